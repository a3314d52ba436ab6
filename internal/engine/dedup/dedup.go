package dedup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Config controls deduplication behavior.
type Config struct {
	Capacity int // records remembered across batches; 0 disables the memo
}

// Deduplicator collapses identical requests within a batch and remembers
// the records of recent ones across batches. Safe for concurrent use.
type Deduplicator struct {
	cfg Config

	mu      sync.Mutex
	records map[string]any
	order   []string // insertion order, oldest first
}

// New creates a Deduplicator with the given config.
func New(cfg Config) *Deduplicator {
	return &Deduplicator{
		cfg:     cfg,
		records: make(map[string]any),
	}
}

// Group is a set of identical requests. Request is the first occurrence;
// Indexes are the batch positions of every occurrence.
type Group struct {
	Key     string
	Request model.Request
	Indexes []int
}

// Key identifies a request by domain and whitespace-insensitive payload.
// Payloads that are not valid JSON are hashed as given.
func Key(domain model.Domain, data json.RawMessage) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0})
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err == nil {
		h.Write(buf.Bytes())
	} else {
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DeduplicateBatch groups requests with identical keys. Returns groups in
// first-occurrence order.
func (d *Deduplicator) DeduplicateBatch(reqs []model.Request) []Group {
	if len(reqs) == 0 {
		return nil
	}

	var order []*Group
	groups := make(map[string]*Group)

	for i, r := range reqs {
		key := Key(r.Domain, r.Data)
		if g, exists := groups[key]; exists {
			g.Indexes = append(g.Indexes, i)
			continue
		}
		g := &Group{Key: key, Request: r, Indexes: []int{i}}
		groups[key] = g
		order = append(order, g)
	}

	result := make([]Group, 0, len(order))
	for _, g := range order {
		result = append(result, *g)
	}
	return result
}

// Lookup returns the remembered record for key.
func (d *Deduplicator) Lookup(key string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[key]
	return rec, ok
}

// Store remembers rec under key, evicting the oldest entries beyond
// Capacity.
func (d *Deduplicator) Store(key string, rec any) {
	if d.cfg.Capacity <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.records[key]; !exists {
		d.order = append(d.order, key)
	}
	d.records[key] = rec

	for len(d.order) > d.cfg.Capacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.records, oldest)
	}
}

// Len returns the number of remembered records.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.records)
}
