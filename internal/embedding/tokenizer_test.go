package embedding

import (
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, types := tok.Tokenize("Hello, world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths: ids=%d attn=%d types=%d", len(ids), len(attn), len(types))
	}
	if ids[0] != clsTokenID {
		t.Errorf("expected CLS %d, got %d", clsTokenID, ids[0])
	}
	if ids[3] != sepTokenID {
		t.Errorf("expected SEP after two words, got %v", ids[:4])
	}
	if attn[3] != 1 || attn[4] != 0 {
		t.Errorf("attention mask should cover CLS, words and SEP only: %v", attn)
	}
	for _, id := range ids[1:3] {
		if id < reservedIDs || id >= vocabSize {
			t.Errorf("word id %d outside vocabulary range", id)
		}
	}
}

func TestSimpleTokenizer_truncates(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, _, _ := tok.Tokenize("a b c d e f g h", 5)
	if ids[4] != sepTokenID {
		t.Errorf("last slot should hold SEP when truncated, got %v", ids)
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("  Go, Python;  SQL  ")
	if len(words) != 3 || words[0] != "go" || words[2] != "sql" {
		t.Errorf("expected [go python sql], got %v", words)
	}
	if SplitWords("") != nil {
		t.Error("empty string should return nil")
	}
}

func TestTokenID_deterministic(t *testing.T) {
	if tokenID("golang") != tokenID("golang") {
		t.Error("token id should be deterministic")
	}
}
