// internal/verify/check.go
package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/mwiater/winnow/internal/bundle"
	"github.com/mwiater/winnow/internal/logging"
)

// Finding is one problem discovered in a bundle. Content problems
// become findings; only I/O failures abort a check with an error.
type Finding struct {
	File   string `json:"file"`
	Check  string `json:"check"`
	Detail string `json:"detail"`
}

// logCounts is the count-bearing subset of a log document. Pointer
// fields distinguish absent values from zero.
type logCounts struct {
	Samples []json.RawMessage `json:"samples"`
	Eval    *struct {
		Dataset *struct {
			Samples   *int  `json:"samples"`
			SampleIDs []int `json:"sample_ids"`
		} `json:"dataset"`
	} `json:"eval"`
	Results *struct {
		TotalSamples     *int `json:"total_samples"`
		CompletedSamples *int `json:"completed_samples"`
	} `json:"results"`
}

// Check inspects the bundle at bundleDir and returns every internal
// inconsistency it finds, in deterministic order: per-file problems
// first (files sorted by name), then index problems, then missing
// bundle-level files. An empty slice means the bundle checks clean.
func Check(bundleDir string) ([]Finding, error) {
	logsDir := filepath.Join(bundleDir, "logs")
	names, err := bundle.ListLogFiles(logsDir)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	parsed := make(map[string]any, len(names))

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(logsDir, name))
		if err != nil {
			return nil, fmt.Errorf("read log file %s: %w", name, err)
		}

		details, err := ValidateDocument(data)
		if err != nil {
			findings = append(findings, Finding{File: name, Check: "parse", Detail: err.Error()})
			continue
		}
		for _, detail := range details {
			findings = append(findings, Finding{File: name, Check: "schema", Detail: detail})
		}

		var counts logCounts
		if err := json.Unmarshal(data, &counts); err != nil {
			findings = append(findings, Finding{File: name, Check: "parse", Detail: err.Error()})
			continue
		}
		findings = append(findings, checkCounts(name, counts)...)

		var value any
		if err := json.Unmarshal(data, &value); err == nil {
			parsed[name] = value
		}
	}

	indexFindings, err := checkIndex(logsDir, names, parsed)
	if err != nil {
		return nil, err
	}
	findings = append(findings, indexFindings...)

	if _, err := os.Stat(filepath.Join(bundleDir, bundle.MarkerFileName)); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat marker file: %w", err)
		}
		findings = append(findings, Finding{File: bundle.MarkerFileName, Check: "marker", Detail: "marker file is missing"})
	}

	logging.LogEvent("Check finished: dir=%s files=%d findings=%d", bundleDir, len(names), len(findings))
	return findings, nil
}

// checkCounts asserts the four count fields against the actual samples
// array. Absent fields are tolerated only while the document has no
// samples to count.
func checkCounts(name string, counts logCounts) []Finding {
	n := len(counts.Samples)
	finding := func(check, format string, args ...any) Finding {
		return Finding{File: name, Check: check, Detail: fmt.Sprintf(format, args...)}
	}

	var out []Finding

	var declared, total, completed *int
	var ids []int
	hasIDs := false
	if counts.Eval != nil && counts.Eval.Dataset != nil {
		declared = counts.Eval.Dataset.Samples
		ids = counts.Eval.Dataset.SampleIDs
		hasIDs = counts.Eval.Dataset.SampleIDs != nil
	}
	if counts.Results != nil {
		total = counts.Results.TotalSamples
		completed = counts.Results.CompletedSamples
	}

	switch {
	case declared == nil && n > 0:
		out = append(out, finding("counts", "eval.dataset.samples is missing for %d samples", n))
	case declared != nil && *declared != n:
		out = append(out, finding("counts", "eval.dataset.samples is %d, samples array has %d", *declared, n))
	}
	switch {
	case total == nil && n > 0:
		out = append(out, finding("counts", "results.total_samples is missing for %d samples", n))
	case total != nil && *total != n:
		out = append(out, finding("counts", "results.total_samples is %d, samples array has %d", *total, n))
	}
	switch {
	case completed == nil && n > 0:
		out = append(out, finding("counts", "results.completed_samples is missing for %d samples", n))
	case completed != nil && *completed != n:
		out = append(out, finding("counts", "results.completed_samples is %d, samples array has %d", *completed, n))
	}

	switch {
	case !hasIDs && n > 0:
		out = append(out, finding("sample_ids", "eval.dataset.sample_ids is missing for %d samples", n))
	case hasIDs && !contiguousIDs(ids, n):
		out = append(out, finding("sample_ids", "eval.dataset.sample_ids is not [1..%d]: %v", n, ids))
	}
	return out
}

func contiguousIDs(ids []int, n int) bool {
	if len(ids) != n {
		return false
	}
	for i, id := range ids {
		if id != i+1 {
			return false
		}
	}
	return true
}

// checkIndex compares logs/logs.json against the log files it claims
// to describe. parsed holds the decoded content of every readable log
// file keyed by name.
func checkIndex(logsDir string, names []string, parsed map[string]any) ([]Finding, error) {
	indexPath := filepath.Join(logsDir, bundle.IndexFileName)
	data, err := os.ReadFile(indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Finding{{File: bundle.IndexFileName, Check: "index", Detail: "bundle index is missing"}}, nil
		}
		return nil, fmt.Errorf("read bundle index: %w", err)
	}

	var index map[string]json.RawMessage
	if err := json.Unmarshal(data, &index); err != nil {
		return []Finding{{File: bundle.IndexFileName, Check: "parse", Detail: err.Error()}}, nil
	}

	var findings []Finding
	for _, name := range names {
		entry, ok := index[name]
		if !ok {
			findings = append(findings, Finding{File: bundle.IndexFileName, Check: "index", Detail: fmt.Sprintf("no entry for %s", name)})
			continue
		}
		fileValue, ok := parsed[name]
		if !ok {
			// The file itself already produced a parse finding.
			continue
		}
		var entryValue any
		if err := json.Unmarshal(entry, &entryValue); err != nil {
			findings = append(findings, Finding{File: bundle.IndexFileName, Check: "index", Detail: fmt.Sprintf("entry for %s is not valid JSON: %v", name, err)})
			continue
		}
		if !reflect.DeepEqual(entryValue, fileValue) {
			findings = append(findings, Finding{File: bundle.IndexFileName, Check: "index", Detail: fmt.Sprintf("entry for %s does not match the file", name)})
		}
	}

	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}
	var stale []string
	for name := range index {
		if !known[name] {
			stale = append(stale, name)
		}
	}
	sort.Strings(stale)
	for _, name := range stale {
		findings = append(findings, Finding{File: bundle.IndexFileName, Check: "index", Detail: fmt.Sprintf("stale entry %s has no log file", name)})
	}
	return findings, nil
}
