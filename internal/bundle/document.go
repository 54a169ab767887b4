// internal/bundle/document.go
// Package bundle implements the sampling build that shrinks an
// evaluation-log web bundle down to a publishable size.
package bundle

import (
	"encoding/json"
	"fmt"
)

// Document is one model's evaluation log, parsed shallowly. The
// samples array is decoded element-by-element into raw JSON so the
// retained records keep their exact bytes; every other top-level field
// rides along untouched and is written back value-identical. Only the
// count-bearing summary fields are ever rewritten, and only when the
// samples array actually shrinks.
type Document struct {
	fields  map[string]json.RawMessage
	samples []json.RawMessage
}

// ParseDocument decodes raw log-document JSON. The top level must be
// an object; a missing or null samples field is fine and simply means
// there is nothing to sample.
func ParseDocument(data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse log document: %w", err)
	}
	// A bare null decodes without error into a nil map.
	if fields == nil {
		return nil, fmt.Errorf("log document top level is not an object")
	}

	doc := &Document{fields: fields}
	if raw, ok := fields["samples"]; ok {
		if err := json.Unmarshal(raw, &doc.samples); err != nil {
			return nil, fmt.Errorf("parse samples array: %w", err)
		}
	}
	return doc, nil
}

// SampleCount returns the number of samples currently in the document.
func (d *Document) SampleCount() int {
	return len(d.samples)
}

// Keep replaces the samples array with the elements at the given
// indices, in the given order, and rewrites the four count fields to
// match the new length. Indices must be valid positions in the current
// samples array.
func (d *Document) Keep(indices []int) error {
	kept := make([]json.RawMessage, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(d.samples) {
			return fmt.Errorf("sample index %d out of range (have %d samples)", idx, len(d.samples))
		}
		kept = append(kept, d.samples[idx])
	}

	raw, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("marshal sampled records: %w", err)
	}
	d.samples = kept
	d.fields["samples"] = raw

	return d.rewriteCounts(len(kept))
}

// rewriteCounts updates eval.dataset.samples, eval.dataset.sample_ids,
// results.total_samples, and results.completed_samples to the new
// sample count. A document that is being truncated must carry both
// sections: without them the counts cannot be kept consistent, and an
// inconsistent bundle is worse than no bundle.
func (d *Document) rewriteCounts(count int) error {
	ids := make([]int, count)
	for i := range ids {
		ids[i] = i + 1
	}

	datasetPatch, err := patchFields(map[string]any{
		"samples":    count,
		"sample_ids": ids,
	})
	if err != nil {
		return err
	}
	if err := d.patchSection("eval", "dataset", datasetPatch); err != nil {
		return err
	}

	resultsPatch, err := patchFields(map[string]any{
		"total_samples":     count,
		"completed_samples": count,
	})
	if err != nil {
		return err
	}
	return d.patchSection("results", "", resultsPatch)
}

// patchSection replaces fields inside the object at the top-level key,
// descending one further level when child is non-empty. The object
// chain must already exist in the document.
func (d *Document) patchSection(key, child string, patch map[string]json.RawMessage) error {
	raw, ok := d.fields[key]
	if !ok {
		return fmt.Errorf("log document has no %s section to update", sectionPath(key, child))
	}

	var section map[string]json.RawMessage
	if err := json.Unmarshal(raw, &section); err != nil {
		return fmt.Errorf("parse %s section: %w", key, err)
	}
	// A null section decodes to a nil map and cannot hold the patched
	// fields.
	if section == nil {
		return fmt.Errorf("log document has no %s section to update", sectionPath(key, child))
	}

	if child == "" {
		for k, v := range patch {
			section[k] = v
		}
	} else {
		childRaw, ok := section[child]
		if !ok {
			return fmt.Errorf("log document has no %s section to update", sectionPath(key, child))
		}
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(childRaw, &inner); err != nil {
			return fmt.Errorf("parse %s section: %w", sectionPath(key, child), err)
		}
		if inner == nil {
			return fmt.Errorf("log document has no %s section to update", sectionPath(key, child))
		}
		for k, v := range patch {
			inner[k] = v
		}
		updated, err := json.Marshal(inner)
		if err != nil {
			return fmt.Errorf("marshal %s section: %w", sectionPath(key, child), err)
		}
		section[child] = updated
	}

	updated, err := json.Marshal(section)
	if err != nil {
		return fmt.Errorf("marshal %s section: %w", key, err)
	}
	d.fields[key] = updated
	return nil
}

func sectionPath(key, child string) string {
	if child == "" {
		return key
	}
	return key + "." + child
}

// patchFields marshals plain values into the raw form patchSection
// splices in.
func patchFields(values map[string]any) (map[string]json.RawMessage, error) {
	patch := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", k, err)
		}
		patch[k] = raw
	}
	return patch, nil
}

// MarshalIndent renders the document as two-space-indented JSON, the
// format the rest of the web bundle carries. Top-level key order is
// lexicographic, so repeated renders of the same document are
// byte-identical.
func (d *Document) MarshalIndent() ([]byte, error) {
	out, err := json.MarshalIndent(d.fields, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal log document: %w", err)
	}
	return out, nil
}
