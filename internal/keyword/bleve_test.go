package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/screener/internal/models"
)

func indexCandidates(t *testing.T, idx *BleveIndex, cands ...*models.Candidate) {
	t.Helper()
	for _, c := range cands {
		if err := idx.Index(context.Background(), c); err != nil {
			t.Fatalf("Index: %v", err)
		}
	}
}

func TestBleveIndex_SearchFindsText(t *testing.T) {
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()

	indexCandidates(t, idx,
		&models.Candidate{ID: "jane.pdf", Text: "Senior Golang engineer. Kubernetes operators, 7 years."},
		&models.Candidate{ID: "bob.docx", Text: "Frontend developer with React and TypeScript."},
	)

	results, err := idx.Search(context.Background(), "Kubernetes", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "jane.pdf" {
		t.Fatalf("expected jane.pdf, got %+v", results)
	}
	if results[0].Fragment == "" {
		t.Error("expected a highlighted fragment")
	}

	// Standard analyzer (no stemming) so "golang" matches "Golang"
	results, _ = idx.Search(context.Background(), "golang", 10, nil)
	if len(results) == 0 || results[0].ID != "jane.pdf" {
		t.Errorf("expected golang to match jane.pdf, got %+v", results)
	}
}

func TestBleveIndex_CoveragePrefersFullMatches(t *testing.T) {
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	indexCandidates(t, idx,
		&models.Candidate{ID: "partial", Text: "python python python python"},
		&models.Candidate{ID: "full", Text: "python and django"},
	)
	results, err := idx.Search(context.Background(), "python django", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].ID != "full" {
		t.Errorf("expected full match first, got %+v", results)
	}
}

func TestBleveIndex_Fuzzy(t *testing.T) {
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	indexCandidates(t, idx, &models.Candidate{ID: "a", Text: "kubernetes administrator"})

	results, _ := idx.Search(context.Background(), "kubernets", 10, nil)
	if len(results) != 0 {
		t.Errorf("exact search should not match a typo, got %+v", results)
	}
	results, err = idx.Search(context.Background(), "kubernets", 10, &SearchOptions{FuzzyEnabled: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Errorf("expected fuzzy match, got %+v", results)
	}
}

func TestBleveIndex_DeleteAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	indexCandidates(t, idx,
		&models.Candidate{ID: "a", Text: "rust"},
		&models.Candidate{ID: "b", Text: "rust"},
	)
	if err := idx.Delete(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	_ = idx.Close()

	reopened, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	n, err := reopened.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("DocCount = %d, want 1", n)
	}
}
