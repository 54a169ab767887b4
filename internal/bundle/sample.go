// internal/bundle/sample.go
package bundle

import (
	"fmt"
	"math/rand"
	"sort"
)

// SampleDocument truncates the document to at most target samples.
// When the document holds more than target samples it draws a uniform
// random subset from rng, keeps those records in their original
// relative order, and rewrites the count fields to match. Documents at
// or under the target, including ones with no samples field at all,
// are left untouched and consume nothing from rng.
//
// Callers that process several documents against one shared rng get
// reproducible output only when the documents are visited in a fixed
// order; Build sorts its file list for exactly that reason.
func SampleDocument(doc *Document, target int, rng *rand.Rand) (sampled bool, err error) {
	if target <= 0 {
		return false, fmt.Errorf("sample target must be positive, got %d", target)
	}

	total := doc.SampleCount()
	if total <= target {
		return false, nil
	}

	indices := rng.Perm(total)[:target]
	sort.Ints(indices)

	if err := doc.Keep(indices); err != nil {
		return false, err
	}
	return true, nil
}
