package facility

import (
	id "zirrmi/pkg/domain"
)

// Collection is the ordered set of facilities being assessed.
//
// Invariants:
//   - It always holds at least one record.
//   - IDs are unique and never reused.
//
// Collection is not safe for concurrent use; the owning wizard runs on the
// onboarding loop.
type Collection struct {
	records []Record
	newID   func() id.FacilityID
}

type Option func(*Collection)

// WithIDGenerator overrides facility ID generation, mostly for tests.
func WithIDGenerator(gen func() id.FacilityID) Option {
	return func(c *Collection) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// NewCollection returns a collection holding one blank record.
func NewCollection(opts ...Option) *Collection {
	c := &Collection{newID: id.NewFacilityID}
	for _, opt := range opts {
		opt(c)
	}
	c.Add()
	return c
}

// Add appends a blank record and returns its ID.
func (c *Collection) Add() id.FacilityID {
	fid := c.newID()
	c.records = append(c.records, Record{ID: fid})
	return fid
}

// Remove deletes the record with the given ID. It refuses to remove the last
// remaining record and reports whether anything was removed.
func (c *Collection) Remove(fid id.FacilityID) bool {
	if len(c.records) <= 1 {
		return false
	}
	i := c.index(fid)
	if i < 0 {
		return false
	}
	c.records = append(c.records[:i], c.records[i+1:]...)
	return true
}

// Update replaces one field of the record with the given ID. Unknown IDs are
// ignored; the return value reports whether a record changed.
func (c *Collection) Update(fid id.FacilityID, field Field, value string) bool {
	i := c.index(fid)
	if i < 0 {
		return false
	}
	return c.records[i].set(field, value)
}

func (c *Collection) Count() int {
	return len(c.records)
}

func (c *Collection) Get(fid id.FacilityID) (Record, bool) {
	i := c.index(fid)
	if i < 0 {
		return Record{}, false
	}
	return c.records[i], true
}

// Records returns a copy of the records in insertion order.
func (c *Collection) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Collection) index(fid id.FacilityID) int {
	for i := range c.records {
		if c.records[i].ID == fid {
			return i
		}
	}
	return -1
}
