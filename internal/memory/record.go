package memory

import (
	"github.com/google/uuid"
)

// SchemaVersion is the canonical remote record layout implemented by this
// codebase. Version 2 keeps the full 14-digit moment as part of the
// (owner, moment) composite key and carries a denormalized year column for
// range queries; earlier revisions encoded the year inside a split moment
// field and are not read or written here.
const SchemaVersion = 2

// Record is the wire/storage shape of a Memory. All fields beyond the
// composite key are optional at this schema version; readers substitute
// documented defaults for absent values (description -> "", star -> 0,
// favourite -> false, coordinates -> absent).
type Record struct {
	Owner         string       `json:"owner" db:"owner"`
	Moment        string       `json:"moment" db:"moment"`
	Year          int          `json:"year" db:"year"`
	Description   *string      `json:"description,omitempty" db:"description"`
	Image         *string      `json:"image,omitempty" db:"image"`
	Star          *int         `json:"star,omitempty" db:"star"`
	Favourite     *bool        `json:"favourite,omitempty" db:"favourite"`
	Coordinates   *Coordinates `json:"coordinates,omitempty" db:"-"`
	SchemaVersion int          `json:"schemaVersion" db:"schema_version"`
}

// ToRecord maps the memory to its remote shape. Fields holding their default
// value are omitted rather than written, which keeps records readable by
// schema revisions where those fields did not yet exist. The process-local ID
// and the derived image URL are never persisted.
func (m Memory) ToRecord() Record {
	r := Record{
		Owner:         m.Owner,
		Moment:        m.Moment,
		Year:          m.Year(),
		Coordinates:   cloneCoordinates(m.Coordinates),
		SchemaVersion: SchemaVersion,
	}
	if m.Description != "" {
		d := m.Description
		r.Description = &d
	}
	if m.Image != "" {
		img := m.Image
		r.Image = &img
	}
	if m.Star != 0 {
		s := m.Star
		r.Star = &s
	}
	if m.Favourite {
		f := m.Favourite
		r.Favourite = &f
	}
	return r
}

// FromRecord maps a remote record back into a Memory, substituting defaults
// for absent optional fields. It fails only when the moment cannot be parsed
// into a valid date; the returned error wraps common.ErrorDecode. A fresh
// process-local ID is assigned.
func FromRecord(r Record) (Memory, error) {
	if _, err := ParseMoment(r.Moment); err != nil {
		return Memory{}, err
	}

	m := Memory{
		ID:          uuid.New(),
		Owner:       r.Owner,
		Moment:      r.Moment,
		Coordinates: cloneCoordinates(r.Coordinates),
	}
	if r.Description != nil {
		m.Description = *r.Description
	}
	if r.Image != nil {
		m.Image = *r.Image
	}
	if r.Star != nil {
		m.Star = clampStar(*r.Star)
	}
	if r.Favourite != nil {
		m.Favourite = *r.Favourite
	}
	return m, nil
}
