package vector

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
)

func TestChromemIndex_UpsertQuery(t *testing.T) {
	idx, err := NewChromemIndex(Options{})
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	defer idx.Close()
	ctx := context.Background()
	if err := idx.Upsert(ctx, "a.pdf", []float32{1, 0, 0}, map[string]string{"text": "alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Upsert(ctx, "b.pdf", []float32{0, 1, 0}, map[string]string{"text": "beta"}); err != nil {
		t.Fatal(err)
	}
	res, err := idx.Query(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("expected topK capped at collection size, got %d", len(res))
	}
	if res[0].ID != "a.pdf" || math.Abs(res[0].Score-1) > 1e-5 {
		t.Errorf("round trip: got %s score %v", res[0].ID, res[0].Score)
	}
	if res[0].Document != "alpha" || res[0].Metadata["id"] != "a.pdf" {
		t.Errorf("expected document and id metadata, got %+v", res[0])
	}
	if len(res[0].Embedding) != 3 {
		t.Errorf("expected stored embedding, got %v", res[0].Embedding)
	}
}

func TestChromemIndex_emptyEmbeddingIsNoop(t *testing.T) {
	idx, _ := NewChromemIndex(Options{})
	if err := idx.Upsert(context.Background(), "a", []float32{}, map[string]string{"text": "x"}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 0 {
		t.Errorf("Size=%d, want 0", idx.Size())
	}
}

func TestChromemIndex_overwriteAndClear(t *testing.T) {
	idx, _ := NewChromemIndex(Options{Collection: "test"})
	ctx := context.Background()
	_ = idx.Upsert(ctx, "a", []float32{1, 0}, map[string]string{"text": "old"})
	_ = idx.Upsert(ctx, "a", []float32{0, 1}, map[string]string{"text": "new"})
	if idx.Size() != 1 {
		t.Fatalf("Size=%d, want 1", idx.Size())
	}
	res, _ := idx.Query(ctx, []float32{0, 1}, 1)
	if len(res) != 1 || res[0].Document != "new" {
		t.Errorf("expected overwritten record, got %+v", res)
	}
	idx.Clear(ctx)
	if idx.Size() != 0 {
		t.Errorf("Size=%d after Clear", idx.Size())
	}
	res, _ = idx.Query(ctx, []float32{0, 1}, 1)
	if len(res) != 0 {
		t.Errorf("expected no results after Clear, got %v", res)
	}
}

func TestChromemIndex_degradedOnDimensionMismatch(t *testing.T) {
	idx, _ := NewChromemIndex(Options{})
	ctx := context.Background()
	_ = idx.Upsert(ctx, "a", []float32{1, 0}, map[string]string{"text": "alpha"})
	res, err := idx.Query(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].ID != "a" || res[0].Score != 0 || res[0].Embedding != nil {
		t.Errorf("expected degraded candidate, got %+v", res)
	}
}

func TestChromemIndex_persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	idx, err := NewChromemIndex(Options{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	_ = idx.Upsert(ctx, "a", []float32{1, 0}, map[string]string{"text": "alpha"})

	reopened, err := NewChromemIndex(Options{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Size() != 1 {
		t.Errorf("Size=%d after reopen, want 1", reopened.Size())
	}
}

func TestChromemIndex_reopenedDegradedPathSeesNewUpsertsOnly(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	idx, err := NewChromemIndex(Options{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	_ = idx.Upsert(ctx, "a", []float32{1, 0}, map[string]string{"text": "alpha"})

	reopened, err := NewChromemIndex(Options{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	_ = reopened.Upsert(ctx, "b", []float32{0, 1}, map[string]string{"text": "beta"})

	res, err := reopened.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 || res[0].ID != "a" {
		t.Errorf("similarity query should see persisted records, got %+v", res)
	}

	res, err = reopened.Query(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].ID != "b" {
		t.Errorf("degraded query should only see records upserted since reopen, got %+v", res)
	}
}

func TestChromemIndex_zeroVectorDoesNotHideBestMatch(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	query := []float32{1, 0, 0, 0}
	for trial := 0; trial < 100; trial++ {
		idx, err := NewChromemIndex(Options{})
		if err != nil {
			t.Fatal(err)
		}
		if err := idx.Upsert(ctx, "empty.txt", []float32{0, 0, 0, 0}, map[string]string{"text": ""}); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 40; i++ {
			v := []float32{rng.Float32() * 0.5, rng.Float32(), rng.Float32(), rng.Float32()}
			if err := idx.Upsert(ctx, fmt.Sprintf("other-%d", i), v, nil); err != nil {
				t.Fatal(err)
			}
		}
		if err := idx.Upsert(ctx, "best.txt", query, nil); err != nil {
			t.Fatal(err)
		}
		res, err := idx.Query(ctx, query, 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(res) != 5 || res[0].ID != "best.txt" {
			ids := make([]string, len(res))
			for i, r := range res {
				ids[i] = r.ID
			}
			t.Fatalf("trial %d: best.txt not ranked first, got %v", trial, ids)
		}
		if idx.Size() != 42 {
			t.Fatalf("Size=%d, want 42", idx.Size())
		}
	}
}

func TestChromemIndex_zeroVectorRecord(t *testing.T) {
	ctx := context.Background()
	idx, _ := NewChromemIndex(Options{})
	if err := idx.Upsert(ctx, "a", []float32{0, 0}, map[string]string{"text": "scanned image"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Upsert(ctx, "b", []float32{0, -1}, map[string]string{"text": "beta"}); err != nil {
		t.Fatal(err)
	}
	res, err := idx.Query(ctx, []float32{0, 1}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("expected both records, got %d", len(res))
	}
	if res[0].ID != "a" || res[0].Score != 0 || res[0].Document != "scanned image" {
		t.Errorf("zero-norm record should score 0 and keep its text, got %+v", res[0])
	}
	if len(res[0].Embedding) != 2 {
		t.Errorf("zero-norm record should carry its embedding, got %v", res[0].Embedding)
	}
	if res[1].ID != "b" || res[1].Score >= 0 {
		t.Errorf("opposite record should rank last with a negative score, got %+v", res[1])
	}

	// Overwriting with a usable embedding moves the record into the collection.
	if err := idx.Upsert(ctx, "a", []float32{0, 1}, map[string]string{"text": "now readable"}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 2 {
		t.Errorf("Size=%d after overwrite, want 2", idx.Size())
	}
	res, _ = idx.Query(ctx, []float32{0, 1}, 1)
	if len(res) != 1 || res[0].ID != "a" || math.Abs(res[0].Score-1) > 1e-5 {
		t.Errorf("expected overwritten record first with score 1, got %+v", res)
	}

	idx.Clear(ctx)
	if idx.Size() != 0 {
		t.Errorf("Size=%d after Clear, want 0", idx.Size())
	}
}
