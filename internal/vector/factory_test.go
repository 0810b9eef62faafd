package vector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestNewIndex_Memory(t *testing.T) {
	idx, err := NewIndex("memory", Options{Dimensions: 3})
	if err != nil {
		t.Fatalf("NewIndex(memory): %v", err)
	}
	defer idx.Close()

	if err := idx.Upsert(context.Background(), "a", []float32{1, 0, 0}, nil); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("Size=%d, want 1", idx.Size())
	}
}

func TestNewIndex_DefaultIsChromem(t *testing.T) {
	idx, err := NewIndex("", Options{})
	if err != nil {
		t.Fatalf("NewIndex(''): %v", err)
	}
	defer idx.Close()
	if _, ok := idx.(*ChromemIndex); !ok {
		t.Errorf("expected *ChromemIndex, got %T", idx)
	}
}

func TestNewIndex_Unknown(t *testing.T) {
	_, err := NewIndex("faiss", Options{Dimensions: 3})
	if !errors.Is(err, ErrUnknownIndexType) {
		t.Errorf("expected ErrUnknownIndexType, got %v", err)
	}
}

func TestNewIndex_MemoryInvalidDimension(t *testing.T) {
	if _, err := NewIndex("memory", Options{}); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestNewIndex_MemorySavesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	idx, _ := NewIndex("memory", Options{Dimensions: 2, Path: path})
	_ = idx.Upsert(context.Background(), "a", []float32{1, 0}, nil)
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	reopened, err := NewIndex("memory", Options{Dimensions: 2, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Size() != 1 {
		t.Errorf("Size=%d, want 1", reopened.Size())
	}
}
