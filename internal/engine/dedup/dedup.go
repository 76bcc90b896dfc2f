// Package dedup avoids predicting the same text twice: Batch collapses
// repeats within one batch and Cache remembers recent records across calls.
package dedup

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/crimson-sun/talepnlp/internal/model"
)

// Batch returns the distinct texts in first-occurrence order, and for each
// input the position of its text in unique.
func Batch(texts []string) (unique []string, index []int) {
	if len(texts) == 0 {
		return nil, nil
	}
	seen := make(map[string]int, len(texts))
	index = make([]int, len(texts))
	for i, t := range texts {
		pos, ok := seen[t]
		if !ok {
			pos = len(unique)
			seen[t] = pos
			unique = append(unique, t)
		}
		index[i] = pos
	}
	return unique, index
}

// Expand maps records for the unique texts back onto the original order.
func Expand(recs []model.Record, index []int) []model.Record {
	out := make([]model.Record, len(index))
	for i, pos := range index {
		out[i] = recs[pos]
	}
	return out
}

// Cache is a fixed-size LRU of records keyed by input text. Safe for
// concurrent use.
type Cache struct {
	lru *lru.Cache[string, model.Record]
}

// NewCache creates a cache holding up to size records.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New[string, model.Record](size)
	if err != nil {
		return nil, fmt.Errorf("dedup: %w", err)
	}
	return &Cache{lru: c}, nil
}

// Get returns the cached record for text.
func (c *Cache) Get(text string) (model.Record, bool) {
	return c.lru.Get(text)
}

// Add stores rec unless a stage failed; failures may be transient and
// should be retried on the next request.
func (c *Cache) Add(text string, rec model.Record) {
	if len(rec.Errors) > 0 {
		return
	}
	c.lru.Add(text, rec)
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return c.lru.Len()
}
