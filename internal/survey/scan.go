// internal/survey/scan.go
// Package survey sizes up a viewer bundle before it is sampled. The
// scan is read-only and works off a pooled fastjson parser so large
// log files are never fully decoded just to be counted.
package survey

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fastjson"

	"github.com/mwiater/winnow/internal/bundle"
	"github.com/mwiater/winnow/internal/logging"
	"github.com/mwiater/winnow/internal/util"
)

var parsers fastjson.ParserPool

// FileStat describes one log file as found on disk.
type FileStat struct {
	Name            string `json:"name"`
	Samples         int    `json:"samples"`
	DeclaredSamples int    `json:"declared_samples"`
	Mismatch        bool   `json:"mismatch"`
	RawBytes        int64  `json:"raw_bytes"`
	GzipBytes       int64  `json:"gzip_bytes"`
	KeptAtTarget    int    `json:"kept_at_target"`
}

// Report aggregates the scan across a bundle's log files.
type Report struct {
	BundleDir      string     `json:"bundle_dir"`
	SampleTarget   int        `json:"sample_target"`
	Files          []FileStat `json:"files"`
	TotalSamples   int        `json:"total_samples"`
	TotalKept      int        `json:"total_kept"`
	TotalRawBytes  int64      `json:"total_raw_bytes"`
	TotalGzipBytes int64      `json:"total_gzip_bytes"`
}

// Scan inspects every log file under bundleDir/logs and reports actual
// sample counts, the counts the documents declare about themselves,
// raw and gzip sizes, and how many samples a build at target would
// keep. The bundle is never modified.
func Scan(bundleDir string, target int) (*Report, error) {
	if target <= 0 {
		return nil, fmt.Errorf("sample target must be positive, got %d", target)
	}

	logsDir := filepath.Join(bundleDir, "logs")
	names, err := bundle.ListLogFiles(logsDir)
	if err != nil {
		return nil, err
	}

	report := &Report{BundleDir: bundleDir, SampleTarget: target}
	for _, name := range names {
		path := filepath.Join(logsDir, name)
		stat, err := scanFile(path, target)
		if err != nil {
			return nil, err
		}
		stat.Name = name
		report.Files = append(report.Files, stat)
		report.TotalSamples += stat.Samples
		report.TotalKept += stat.KeptAtTarget
		report.TotalRawBytes += stat.RawBytes
		report.TotalGzipBytes += stat.GzipBytes
	}

	logging.LogEvent("Survey finished: dir=%s files=%d samples=%d rawBytes=%d gzipBytes=%d",
		bundleDir, len(report.Files), report.TotalSamples, report.TotalRawBytes, report.TotalGzipBytes)
	return report, nil
}

func scanFile(path string, target int) (FileStat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileStat{}, fmt.Errorf("read log file %s: %w", path, err)
	}

	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return FileStat{}, fmt.Errorf("log file %s: %w", path, err)
	}

	actual := len(v.GetArray("samples"))
	declared := v.GetInt("eval", "dataset", "samples")

	gzipped, err := gzipSize(data)
	if err != nil {
		return FileStat{}, fmt.Errorf("log file %s: %w", path, err)
	}

	return FileStat{
		Samples:         actual,
		DeclaredSamples: declared,
		Mismatch:        declared != actual,
		RawBytes:        int64(len(data)),
		GzipBytes:       gzipped,
		KeptAtTarget:    util.Min(actual, target),
	}, nil
}

// countingWriter discards what it is given and keeps the byte count.
type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// gzipSize reports how many bytes data occupies gzip-compressed, the
// transfer size a static host would serve.
func gzipSize(data []byte) (int64, error) {
	var cw countingWriter
	zw := gzip.NewWriter(&cw)
	if _, err := zw.Write(data); err != nil {
		return 0, fmt.Errorf("gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("gzip: %w", err)
	}
	return cw.n, nil
}
