package vector

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

type memoryRecord struct {
	embedding []float32
	metadata  map[string]string
	document  string
}

// MemoryIndex is an in-memory index using brute-force cosine search.
// Records keep their first-insertion order; overwriting an ID keeps its position.
type MemoryIndex struct {
	dimensions int
	path       string
	ids        []string
	records    map[string]*memoryRecord
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		ids:        make([]string, 0),
		records:    make(map[string]*memoryRecord),
	}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Upsert stores or replaces the record for id.
func (m *MemoryIndex) Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]string) error {
	if len(embedding) == 0 {
		return nil
	}
	if len(embedding) != m.dimensions {
		return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(embedding), m.dimensions)
	}
	vec := make([]float32, m.dimensions)
	copy(vec, embedding)
	meta := copyMetadata(metadata)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		m.ids = append(m.ids, id)
	}
	m.records[id] = &memoryRecord{embedding: vec, metadata: meta, document: meta[MetadataText]}
	return nil
}

// Query returns the topK records by cosine similarity. Records whose dimension differs
// from the query are skipped; if that leaves nothing, records come back degraded with score 0.
func (m *MemoryIndex) Query(ctx context.Context, query []float32, topK int) ([]Candidate, error) {
	if len(query) == 0 || topK <= 0 {
		return []Candidate{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.ids) == 0 {
		return []Candidate{}, nil
	}
	if topK > len(m.ids) {
		topK = len(m.ids)
	}

	type scored struct {
		hit  rawHit
		dist float64
	}
	scores := make([]scored, 0, len(m.ids))
	for _, id := range m.ids {
		rec := m.records[id]
		if len(rec.embedding) != len(query) {
			continue
		}
		dist := 1 - CosineSimilarity(query, rec.embedding)
		scores = append(scores, scored{
			hit: rawHit{
				ID:        id,
				Distance:  dist,
				Embedding: append([]float32(nil), rec.embedding...),
				Metadata:  rec.metadata,
				Document:  rec.document,
			},
			dist: dist,
		})
	}
	if len(scores) == 0 {
		return m.degradedLocked(topK), nil
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].dist < scores[j].dist })
	if topK > len(scores) {
		topK = len(scores)
	}
	hits := make([]rawHit, topK)
	for i := 0; i < topK; i++ {
		hits[i] = scores[i].hit
	}
	return normalizeHits(hits), nil
}

func (m *MemoryIndex) degradedLocked(limit int) []Candidate {
	hits := make([]rawHit, 0, limit)
	for _, id := range m.ids {
		if len(hits) == limit {
			break
		}
		rec := m.records[id]
		hits = append(hits, rawHit{ID: id, Metadata: rec.metadata, Document: rec.document})
	}
	return normalizeHits(hits)
}

// Clear removes all records.
func (m *MemoryIndex) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = make([]string, 0)
	m.records = make(map[string]*memoryRecord)
}

// Save persists the index to path. Directory is created if needed. Format: dimension (4), n (4),
// then per record: id, vector (dimension*4 bytes), metadata count (4), key/value pairs.
// Strings are a 4-byte length followed by the bytes.
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, id := range m.ids {
		rec := m.records[id]
		if err := writeString(w, id); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := w.Write(float32SliceToBytes(rec.embedding)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(rec.metadata))); err != nil {
			return fmt.Errorf("write metadata count: %w", err)
		}
		keys := make([]string, 0, len(rec.metadata))
		for k := range rec.metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := writeString(w, k); err != nil {
				return fmt.Errorf("write metadata key: %w", err)
			}
			if err := writeString(w, rec.metadata[k]); err != nil {
				return fmt.Errorf("write metadata value: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush index file: %w", err)
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents. Dimensions must match.
// If the file does not exist, no error is returned and the index is unchanged.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var dim, n uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, m.dimensions)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	ids := make([]string, 0, n)
	records := make(map[string]*memoryRecord, n)
	buf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		id, err := readString(r)
		if err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		var metaCount uint32
		if err := binary.Read(r, binary.LittleEndian, &metaCount); err != nil {
			return fmt.Errorf("read metadata count: %w", err)
		}
		meta := make(map[string]string, metaCount)
		for j := uint32(0); j < metaCount; j++ {
			k, err := readString(r)
			if err != nil {
				return fmt.Errorf("read metadata key: %w", err)
			}
			v, err := readString(r)
			if err != nil {
				return fmt.Errorf("read metadata value: %w", err)
			}
			meta[k] = v
		}
		if _, ok := records[id]; !ok {
			ids = append(ids, id)
		}
		records[id] = &memoryRecord{embedding: bytesToFloat32Slice(buf), metadata: meta, document: meta[MetadataText]}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = ids
	m.records = records
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}

// Size returns the number of records in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Close saves the index when it was opened with a path.
func (m *MemoryIndex) Close() error {
	return m.Save(m.path)
}
