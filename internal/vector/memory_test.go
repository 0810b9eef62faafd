package vector

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func TestMemoryIndex_UpsertQuery(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	ctx := context.Background()
	if err := idx.Upsert(ctx, "a", []float32{1, 0, 0}, map[string]string{"text": "alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Upsert(ctx, "b", []float32{0, 1, 0}, map[string]string{"text": "beta"}); err != nil {
		t.Fatal(err)
	}
	res, err := idx.Query(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("expected topK capped at 2, got %d", len(res))
	}
	if res[0].ID != "a" || math.Abs(res[0].Score-1) > 1e-6 {
		t.Errorf("round trip: got %s score %v", res[0].ID, res[0].Score)
	}
	if res[0].Document != "alpha" || len(res[0].Embedding) != 3 {
		t.Errorf("expected document and embedding, got %+v", res[0])
	}
}

func TestMemoryIndex_emptyEmbeddingIsNoop(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	if err := idx.Upsert(context.Background(), "a", nil, map[string]string{"text": "x"}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 0 {
		t.Errorf("Size=%d, want 0", idx.Size())
	}
}

func TestMemoryIndex_overwrite(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, "a", []float32{1, 0}, map[string]string{"text": "old"})
	_ = idx.Upsert(ctx, "a", []float32{0, 1}, map[string]string{"text": "new"})
	if idx.Size() != 1 {
		t.Fatalf("Size=%d, want 1", idx.Size())
	}
	res, _ := idx.Query(ctx, []float32{0, 1}, 1)
	if res[0].Document != "new" || math.Abs(res[0].Score-1) > 1e-6 {
		t.Errorf("expected overwritten record, got %+v", res[0])
	}
}

func TestMemoryIndex_emptyQuery(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	_ = idx.Upsert(context.Background(), "a", []float32{1, 0}, nil)
	res, err := idx.Query(context.Background(), nil, 5)
	if err != nil || len(res) != 0 {
		t.Errorf("expected empty result, got %v, %v", res, err)
	}
	res, _ = idx.Query(context.Background(), []float32{1, 0}, 0)
	if len(res) != 0 {
		t.Errorf("topK 0 should return nothing, got %d", len(res))
	}
}

func TestMemoryIndex_degradedOnDimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, "a", []float32{1, 0}, map[string]string{"text": "alpha"})
	res, err := idx.Query(ctx, []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].ID != "a" || res[0].Score != 0 || res[0].Embedding != nil {
		t.Errorf("expected degraded candidate, got %+v", res)
	}
	if res[0].Document != "alpha" {
		t.Errorf("degraded candidate should keep its document, got %q", res[0].Document)
	}
}

func TestMemoryIndex_Clear(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, "a", []float32{1, 0}, nil)
	idx.Clear(ctx)
	if idx.Size() != 0 {
		t.Errorf("Size=%d after Clear", idx.Size())
	}
}

func TestMemoryIndex_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, "a", []float32{0.6, 0.8}, map[string]string{"text": "alpha", "source": "upload"})
	_ = idx.Upsert(ctx, "b", []float32{1, 0}, map[string]string{"text": "beta"})
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, _ := NewMemoryIndex(2)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("Size=%d, want 2", loaded.Size())
	}
	res, _ := loaded.Query(ctx, []float32{0.6, 0.8}, 1)
	if res[0].ID != "a" || res[0].Metadata["source"] != "upload" || res[0].Document != "alpha" {
		t.Errorf("loaded record mismatch: %+v", res[0])
	}

	wrongDims, _ := NewMemoryIndex(3)
	if err := wrongDims.Load(path); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if err := loaded.Load(filepath.Join(t.TempDir(), "missing.bin")); err != nil {
		t.Errorf("missing file should not error: %v", err)
	}
}
