// internal/bundle/sample_test.go
package bundle

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

// syntheticDoc builds a document with n samples whose ids run 1..n and
// count fields already consistent.
func syntheticDoc(t *testing.T, n int) *Document {
	t.Helper()
	doc, err := ParseDocument(syntheticDocJSON(n))
	if err != nil {
		t.Fatalf("ParseDocument error: %v", err)
	}
	return doc
}

func syntheticDocJSON(n int) []byte {
	samples := make([]map[string]any, n)
	ids := make([]int, n)
	for i := 0; i < n; i++ {
		samples[i] = map[string]any{"id": i + 1, "score": float64(i%2) / 2}
		ids[i] = i + 1
	}
	doc := map[string]any{
		"eval": map[string]any{
			"task":    "arc_challenge",
			"dataset": map[string]any{"name": "arc", "samples": n, "sample_ids": ids},
		},
		"results": map[string]any{"total_samples": n, "completed_samples": n, "accuracy": 0.5},
		"samples": samples,
		"status":  "success",
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("marshal synthetic doc: %v", err))
	}
	return raw
}

func keptIDs(t *testing.T, doc *Document) []int {
	t.Helper()
	out := decodeDoc(t, doc)
	ids := make([]int, len(out.Samples))
	for i, s := range out.Samples {
		ids[i] = s.ID
	}
	return ids
}

func TestSampleDocumentTruncates(t *testing.T) {
	doc := syntheticDoc(t, 25)
	rng := rand.New(rand.NewSource(42))

	sampled, err := SampleDocument(doc, 10, rng)
	if err != nil {
		t.Fatalf("SampleDocument error: %v", err)
	}
	if !sampled {
		t.Fatal("expected document to be sampled")
	}

	ids := keptIDs(t, doc)
	if len(ids) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("kept samples out of original order: %v", ids)
		}
	}

	out := decodeDoc(t, doc)
	if out.Eval.Dataset.Samples != 10 || out.Results.TotalSamples != 10 || out.Results.CompletedSamples != 10 {
		t.Fatalf("count fields not rewritten: %+v", out)
	}
	if !reflect.DeepEqual(out.Eval.Dataset.SampleIDs, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}) {
		t.Fatalf("expected contiguous sample_ids, got %v", out.Eval.Dataset.SampleIDs)
	}
}

func TestSampleDocumentDeterministic(t *testing.T) {
	first := syntheticDoc(t, 100)
	second := syntheticDoc(t, 100)

	if _, err := SampleDocument(first, 10, rand.New(rand.NewSource(42))); err != nil {
		t.Fatalf("SampleDocument error: %v", err)
	}
	if _, err := SampleDocument(second, 10, rand.New(rand.NewSource(42))); err != nil {
		t.Fatalf("SampleDocument error: %v", err)
	}

	if !reflect.DeepEqual(keptIDs(t, first), keptIDs(t, second)) {
		t.Fatal("expected identical selections for identical seeds")
	}
}

func TestSampleDocumentAtOrUnderTarget(t *testing.T) {
	for _, n := range []int{0, 7, 10} {
		doc := syntheticDoc(t, n)
		rng := rand.New(rand.NewSource(42))

		sampled, err := SampleDocument(doc, 10, rng)
		if err != nil {
			t.Fatalf("n=%d: SampleDocument error: %v", n, err)
		}
		if sampled {
			t.Fatalf("n=%d: expected pass-through", n)
		}
		if doc.SampleCount() != n {
			t.Fatalf("n=%d: expected %d samples, got %d", n, n, doc.SampleCount())
		}

		// The pass-through must not advance the shared source.
		fresh := rand.New(rand.NewSource(42))
		if rng.Int63() != fresh.Int63() {
			t.Fatalf("n=%d: pass-through consumed randomness", n)
		}
	}
}

func TestSampleDocumentWithoutSamplesField(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"status": "started", "note": "no samples yet"}`))
	if err != nil {
		t.Fatalf("ParseDocument error: %v", err)
	}
	sampled, err := SampleDocument(doc, 10, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("SampleDocument error: %v", err)
	}
	if sampled {
		t.Fatal("expected pass-through for document without samples")
	}
}

func TestSampleDocumentRejectsBadTarget(t *testing.T) {
	doc := syntheticDoc(t, 5)
	for _, target := range []int{0, -3} {
		if _, err := SampleDocument(doc, target, rand.New(rand.NewSource(42))); err == nil {
			t.Fatalf("target=%d: expected error", target)
		}
	}
}

func TestSampleDocumentNullCountSections(t *testing.T) {
	// Documents over the target must fail cleanly when a count section
	// is null instead of an object.
	samples := make([]map[string]any, 12)
	for i := range samples {
		samples[i] = map[string]any{"id": i + 1}
	}
	samplesJSON, err := json.Marshal(samples)
	if err != nil {
		t.Fatalf("marshal samples: %v", err)
	}

	cases := []struct {
		name string
		data string
	}{
		{"null results", fmt.Sprintf(`{"eval": {"dataset": {"samples": 12, "sample_ids": [1]}}, "results": null, "samples": %s}`, samplesJSON)},
		{"null dataset", fmt.Sprintf(`{"eval": {"dataset": null}, "results": {"total_samples": 12, "completed_samples": 12}, "samples": %s}`, samplesJSON)},
	}
	for _, tc := range cases {
		doc, err := ParseDocument([]byte(tc.data))
		if err != nil {
			t.Fatalf("%s: ParseDocument error: %v", tc.name, err)
		}
		if _, err := SampleDocument(doc, 10, rand.New(rand.NewSource(42))); err == nil {
			t.Fatalf("%s: expected error for null count section", tc.name)
		}
	}
}

func TestSampleDocumentSharedSourceOrdering(t *testing.T) {
	// Two documents drawn from one source must match the same two
	// draws replayed against a fresh source with the same seed.
	shared := rand.New(rand.NewSource(7))
	a := syntheticDoc(t, 40)
	b := syntheticDoc(t, 60)
	if _, err := SampleDocument(a, 10, shared); err != nil {
		t.Fatalf("SampleDocument error: %v", err)
	}
	if _, err := SampleDocument(b, 10, shared); err != nil {
		t.Fatalf("SampleDocument error: %v", err)
	}

	replay := rand.New(rand.NewSource(7))
	a2 := syntheticDoc(t, 40)
	b2 := syntheticDoc(t, 60)
	if _, err := SampleDocument(a2, 10, replay); err != nil {
		t.Fatalf("SampleDocument error: %v", err)
	}
	if _, err := SampleDocument(b2, 10, replay); err != nil {
		t.Fatalf("SampleDocument error: %v", err)
	}

	if !reflect.DeepEqual(keptIDs(t, a), keptIDs(t, a2)) {
		t.Fatal("first draw diverged between identical sequences")
	}
	if !reflect.DeepEqual(keptIDs(t, b), keptIDs(t, b2)) {
		t.Fatal("second draw diverged between identical sequences")
	}
}
