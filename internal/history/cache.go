// Package history caches the persisted session records of the current user.
//
// The cache is refreshed wholesale: on sign-in, after a successful save, and
// after a delete. It is never persisted locally; every run refetches it. All
// views over it (pages, search results, analytics input) are read-only
// projections.
package history

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

// Cache holds the full record set plus a loaded marker so an empty history
// can be told apart from a never-fetched one.
type Cache struct {
	records []model.SessionRecord
	loaded  bool
}

// NewCache returns an empty, not-yet-loaded cache.
func NewCache() *Cache {
	return &Cache{}
}

// SetRecords replaces the whole record set.
func (c *Cache) SetRecords(records []model.SessionRecord) {
	c.records = make([]model.SessionRecord, len(records))
	copy(c.records, records)
	c.loaded = true
}

// Clear drops everything, e.g. on logout.
func (c *Cache) Clear() {
	c.records = nil
	c.loaded = false
}

// Loaded reports whether a refresh has completed since the last Clear.
func (c *Cache) Loaded() bool {
	return c.loaded
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return len(c.records)
}

// Records returns a copy of the full set, unordered.
func (c *Cache) Records() []model.SessionRecord {
	out := make([]model.SessionRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Newest returns the records sorted by creation timestamp descending.
func (c *Cache) Newest() []model.SessionRecord {
	out := c.Records()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// TotalPages returns the page count for the given page size.
func (c *Cache) TotalPages(pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (len(c.records) + pageSize - 1) / pageSize
}

// Page returns one page of records, newest first. Page numbers outside
// [1, TotalPages] are rejected; an empty cache still answers page 1.
func (c *Cache) Page(page, pageSize int) ([]model.SessionRecord, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive")
	}
	total := c.TotalPages(pageSize)
	if len(c.records) == 0 {
		if page == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("page %d out of range", page)
	}
	if page < 1 || page > total {
		return nil, fmt.Errorf("page %d out of range [1, %d]", page, total)
	}
	sorted := c.Newest()
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], nil
}

// ClampPage pulls a page number back into the valid range after deletions.
func (c *Cache) ClampPage(page, pageSize int) int {
	total := c.TotalPages(pageSize)
	if total == 0 {
		return 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Search returns up to limit records whose title or creation timestamp text
// contains the term, case-insensitively, newest first.
func (c *Cache) Search(term string, limit int) []model.SessionRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return nil
	}
	var out []model.SessionRecord
	for _, record := range c.Newest() {
		haystack := strings.ToLower(record.Title + " " + record.CreatedAt.Format("2006-01-02 15:04"))
		if strings.Contains(haystack, term) {
			out = append(out, record)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Get looks up a record by id.
func (c *Cache) Get(id int64) (model.SessionRecord, bool) {
	for _, record := range c.records {
		if record.ID == id {
			return record, true
		}
	}
	return model.SessionRecord{}, false
}

// Remove drops a record after a confirmed delete succeeded remotely.
func (c *Cache) Remove(id int64) bool {
	for i, record := range c.records {
		if record.ID == id {
			c.records = append(c.records[:i], c.records[i+1:]...)
			return true
		}
	}
	return false
}
