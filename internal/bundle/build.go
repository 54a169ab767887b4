// internal/bundle/build.go
package bundle

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwiater/winnow/internal/logging"
	"github.com/mwiater/winnow/internal/util"
)

// Options controls a bundle build. SampleTarget is the per-file cap on
// retained samples; Seed feeds the single random source shared by
// every file in the build.
type Options struct {
	SampleTarget int
	Seed         int64
}

// FileResult describes what the build did to one log file.
type FileResult struct {
	Name            string `json:"name"`
	OriginalSamples int    `json:"original_samples"`
	KeptSamples     int    `json:"kept_samples"`
	Sampled         bool   `json:"sampled"`
	BytesIn         int64  `json:"bytes_in"`
	BytesOut        int64  `json:"bytes_out"`
}

// Result summarizes a completed build.
type Result struct {
	SourceDir     string       `json:"source_dir"`
	OutputDir     string       `json:"output_dir"`
	SampleTarget  int          `json:"sample_target"`
	Seed          int64        `json:"seed"`
	Files         []FileResult `json:"files"`
	TotalBytesIn  int64        `json:"total_bytes_in"`
	TotalBytesOut int64        `json:"total_bytes_out"`
}

// Build assembles a sampled copy of the viewer bundle at sourceDir
// into outputDir. Static assets are copied byte-for-byte, each
// logs/*.json is truncated to at most opts.SampleTarget samples, and
// logs/logs.json is rebuilt from the truncated documents so index
// entries match the files exactly.
//
// The bundle is assembled in a staging directory next to outputDir and
// swapped into place only after every file succeeds. A pre-existing
// outputDir is destroyed on success and left untouched on failure.
//
// Log files are processed in sorted name order against one random
// source seeded from opts.Seed, so the same source tree, target, and
// seed always reproduce the same output. Files at or under the target
// consume no randomness; adding, removing, or renaming log files
// shifts the draws of every file sorted after the change.
func Build(sourceDir, outputDir string, opts Options) (*Result, error) {
	if opts.SampleTarget <= 0 {
		return nil, fmt.Errorf("sample target must be positive, got %d", opts.SampleTarget)
	}
	if err := ValidateLayout(sourceDir); err != nil {
		return nil, err
	}
	if err := checkDistinct(sourceDir, outputDir); err != nil {
		return nil, err
	}

	parent := filepath.Dir(filepath.Clean(outputDir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create output parent %s: %w", parent, err)
	}
	stage, err := os.MkdirTemp(parent, ".winnow-stage-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory in %s: %w", parent, err)
	}
	committed := false
	defer func() {
		if !committed {
			os.RemoveAll(stage)
		}
	}()
	// MkdirTemp creates 0700; the published bundle must be
	// world-readable.
	if err := os.Chmod(stage, 0o755); err != nil {
		return nil, fmt.Errorf("chmod staging directory: %w", err)
	}

	logging.LogEvent("Build started: source=%s output=%s target=%d seed=%d", sourceDir, outputDir, opts.SampleTarget, opts.Seed)

	if err := copyStaticAssets(sourceDir, stage); err != nil {
		return nil, err
	}

	result := &Result{
		SourceDir:    sourceDir,
		OutputDir:    outputDir,
		SampleTarget: opts.SampleTarget,
		Seed:         opts.Seed,
	}
	if err := sampleLogFiles(sourceDir, stage, opts, result); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(outputDir); err != nil {
		return nil, fmt.Errorf("remove previous output %s: %w", outputDir, err)
	}
	if err := os.Rename(stage, outputDir); err != nil {
		return nil, fmt.Errorf("move staged bundle into %s: %w", outputDir, err)
	}
	committed = true

	logging.LogEvent("Build finished: files=%d bytesIn=%d bytesOut=%d", len(result.Files), result.TotalBytesIn, result.TotalBytesOut)
	return result, nil
}

// newBuildRand constructs the single random source a build draws
// every selection from.
func newBuildRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// checkDistinct refuses builds where replacing the output would
// clobber source data. The source is read-only for the whole build, so
// neither directory may equal or contain the other.
func checkDistinct(sourceDir, outputDir string) error {
	src, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("resolve source path: %w", err)
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	sep := string(os.PathSeparator)
	if src == out || strings.HasPrefix(src+sep, out+sep) || strings.HasPrefix(out+sep, src+sep) {
		return fmt.Errorf("output directory %s overlaps the source bundle %s", outputDir, sourceDir)
	}
	return nil
}

// copyStaticAssets carries the viewer shell over unchanged and drops
// the Pages marker file.
func copyStaticAssets(sourceDir, stage string) error {
	if err := copyDir(filepath.Join(sourceDir, "assets"), filepath.Join(stage, "assets")); err != nil {
		return err
	}
	for _, name := range []string{"index.html", "robots.txt"} {
		if err := copyFile(filepath.Join(sourceDir, name), filepath.Join(stage, name)); err != nil {
			return err
		}
	}
	marker := filepath.Join(stage, MarkerFileName)
	if err := util.WriteFile(marker, nil); err != nil {
		return fmt.Errorf("create %s: %w", marker, err)
	}
	return nil
}

// sampleLogFiles truncates every per-model log file into the staging
// directory and rebuilds the aggregate index from the bytes it wrote.
func sampleLogFiles(sourceDir, stage string, opts Options, result *Result) error {
	logsDir := filepath.Join(sourceDir, "logs")
	names, err := ListLogFiles(logsDir)
	if err != nil {
		return err
	}

	stageLogs := filepath.Join(stage, "logs")
	if err := os.MkdirAll(stageLogs, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", stageLogs, err)
	}

	rng := newBuildRand(opts.Seed)
	index := make(map[string]json.RawMessage, len(names))

	for _, name := range names {
		srcPath := filepath.Join(logsDir, name)
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return fmt.Errorf("read log file %s: %w", srcPath, err)
		}

		doc, err := ParseDocument(data)
		if err != nil {
			return fmt.Errorf("log file %s: %w", srcPath, err)
		}

		original := doc.SampleCount()
		sampled, err := SampleDocument(doc, opts.SampleTarget, rng)
		if err != nil {
			return fmt.Errorf("log file %s: %w", srcPath, err)
		}

		out, err := doc.MarshalIndent()
		if err != nil {
			return fmt.Errorf("log file %s: %w", srcPath, err)
		}
		dstPath := filepath.Join(stageLogs, name)
		if err := util.WriteFile(dstPath, out); err != nil {
			return fmt.Errorf("write log file %s: %w", dstPath, err)
		}
		index[name] = json.RawMessage(out)

		kept := doc.SampleCount()
		if sampled {
			logging.LogEvent("Sampled %s: %d -> %d samples", name, original, kept)
		} else {
			logging.LogEvent("Kept %s unchanged: %d samples", name, kept)
		}

		result.Files = append(result.Files, FileResult{
			Name:            name,
			OriginalSamples: original,
			KeptSamples:     kept,
			Sampled:         sampled,
			BytesIn:         int64(len(data)),
			BytesOut:        int64(len(out)),
		})
		result.TotalBytesIn += int64(len(data))
		result.TotalBytesOut += int64(len(out))
	}

	indexBytes, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle index: %w", err)
	}
	indexPath := filepath.Join(stageLogs, IndexFileName)
	if err := util.WriteFile(indexPath, indexBytes); err != nil {
		return fmt.Errorf("write bundle index %s: %w", indexPath, err)
	}
	logging.LogEvent("Rebuilt bundle index with %d entries", len(index))
	return nil
}
