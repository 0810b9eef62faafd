package vector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// DefaultCollection is the chromem collection used when none is configured.
const DefaultCollection = "resumes"

var errEmbeddingRefused = errors.New("chromem index only accepts precomputed embeddings")

// refuseEmbedding keeps chromem from calling an embedding API on its own.
func refuseEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errEmbeddingRefused
}

// ChromemIndex is an Index backed by a chromem-go collection. The DB is persisted
// under Path when set and kept in memory otherwise.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	// ids tracks records upserted by this process in insertion order; chromem has no
	// listing API and the degraded path needs one. It is not rebuilt when a persistent
	// DB is reopened, so after a restart the degraded path only sees new upserts.
	ids   []string
	known map[string]struct{}
	// flat holds records whose embedding has no usable norm. chromem normalizes
	// them to NaN, which stalls its top-n heap, so they never enter the collection
	// and are not persisted.
	flat   map[string]chromem.Document
	mu     sync.Mutex
	logger *zap.Logger
}

// NewChromemIndex opens (or creates) the collection described by opts.
func NewChromemIndex(opts Options) (*ChromemIndex, error) {
	name := opts.Collection
	if name == "" {
		name = DefaultCollection
	}
	var (
		db  *chromem.DB
		err error
	)
	if opts.Path != "" {
		db, err = chromem.NewPersistentDB(opts.Path, opts.Compress)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}
	col, err := db.GetOrCreateCollection(name, nil, refuseEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", name, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromemIndex{
		db:         db,
		collection: col,
		name:       name,
		known:      make(map[string]struct{}),
		flat:       make(map[string]chromem.Document),
		logger:     logger,
	}, nil
}

// Type returns the index type identifier.
func (c *ChromemIndex) Type() string {
	return string(IndexTypeChromem)
}

// Upsert adds or overwrites the document for id.
func (c *ChromemIndex) Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]string) error {
	if len(embedding) == 0 {
		return nil
	}
	meta := copyMetadata(metadata)
	if _, ok := meta[MetadataID]; !ok {
		meta[MetadataID] = id
	}
	doc := chromem.Document{
		ID:        id,
		Metadata:  meta,
		Embedding: append([]float32(nil), embedding...),
		Content:   meta[MetadataText],
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if hasUsableNorm(embedding) {
		if err := c.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("upsert %s: %w", id, err)
		}
		delete(c.flat, id)
	} else {
		if _, stored := c.flat[id]; !stored {
			if err := c.collection.Delete(ctx, nil, nil, id); err != nil {
				c.logger.Debug("failed to drop previous record", zap.String("id", id), zap.Error(err))
			}
		}
		c.flat[id] = doc
	}
	if _, ok := c.known[id]; !ok {
		c.known[id] = struct{}{}
		c.ids = append(c.ids, id)
	}
	return nil
}

// Query returns the topK nearest documents. Records with a zero-norm embedding score 0
// and are merged in by score. When chromem cannot answer (for example a dimension
// mismatch), stored records are returned degraded with score 0.
func (c *ChromemIndex) Query(ctx context.Context, query []float32, topK int) ([]Candidate, error) {
	if len(query) == 0 || topK <= 0 {
		return []Candidate{}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	count := c.collection.Count()
	if count+len(c.flat) == 0 {
		return []Candidate{}, nil
	}

	var hits []rawHit
	if count > 0 {
		n := topK
		if n > count {
			n = count
		}
		results, err := c.collection.QueryEmbedding(ctx, query, n, nil, nil)
		if err != nil {
			c.logger.Debug("chromem query failed, returning degraded candidates",
				zap.String("collection", c.name), zap.Error(err))
		}
		if len(results) == 0 {
			return c.degradedLocked(ctx, topK), nil
		}
		hits = make([]rawHit, 0, len(results)+len(c.flat))
		for _, r := range results {
			hits = append(hits, rawHit{
				ID:        r.ID,
				Distance:  1 - r.Similarity,
				Embedding: r.Embedding,
				Metadata:  r.Metadata,
				Document:  r.Content,
			})
		}
	}
	hits = append(hits, c.flatHitsLocked()...)
	out := normalizeHits(hits)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

// flatHitsLocked returns the zero-norm records in insertion order.
func (c *ChromemIndex) flatHitsLocked() []rawHit {
	hits := make([]rawHit, 0, len(c.flat))
	for _, id := range c.ids {
		doc, ok := c.flat[id]
		if !ok {
			continue
		}
		hits = append(hits, rawHit{
			ID:        doc.ID,
			Distance:  1.0,
			Embedding: doc.Embedding,
			Metadata:  doc.Metadata,
			Document:  doc.Content,
		})
	}
	return hits
}

func hasUsableNorm(v []float32) bool {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return sum > 0 && !math.IsInf(sum, 0) && !math.IsNaN(sum)
}

func (c *ChromemIndex) degradedLocked(ctx context.Context, limit int) []Candidate {
	hits := make([]rawHit, 0, limit)
	for _, id := range c.ids {
		if len(hits) == limit {
			break
		}
		if doc, ok := c.flat[id]; ok {
			hits = append(hits, rawHit{Metadata: doc.Metadata, Document: doc.Content})
			continue
		}
		doc, err := c.collection.GetByID(ctx, id)
		if err != nil {
			continue
		}
		hits = append(hits, rawHit{Metadata: doc.Metadata, Document: doc.Content})
	}
	return normalizeHits(hits)
}

// Clear drops and recreates the collection.
func (c *ChromemIndex) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.db.DeleteCollection(c.name); err != nil {
		c.logger.Warn("failed to delete collection", zap.String("collection", c.name), zap.Error(err))
	}
	col, err := c.db.GetOrCreateCollection(c.name, nil, refuseEmbedding)
	if err != nil {
		c.logger.Warn("failed to recreate collection", zap.String("collection", c.name), zap.Error(err))
		return
	}
	c.collection = col
	c.ids = nil
	c.known = make(map[string]struct{})
	c.flat = make(map[string]chromem.Document)
}

// Size returns the number of documents in the collection.
func (c *ChromemIndex) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collection.Count() + len(c.flat)
}

// Close is a no-op; persistent chromem writes every document on upsert.
func (c *ChromemIndex) Close() error {
	return nil
}
