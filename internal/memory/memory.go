// Package memory defines the client-facing Memory entity, its timestamp
// encoding rules, and the mapping to the schema-versioned remote record.
package memory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StarRange is the inclusive range of valid ratings.
const (
	MinStar = 0
	MaxStar = 5
)

// ErrNoImage is returned by New when the image reference is empty and thus
// can never be resolved to a displayable asset or blob key.
var ErrNoImage = errors.New("image reference is empty")

// Coordinates is an optional geolocation attached to a memory. Absence
// (a nil *Coordinates) means no location was captured.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Memory is one journaled moment. Values are immutable: the With* methods
// return copies. ID is process-local, assigned at construction, and never
// persisted; it exists only to give UI lists a stable identity.
type Memory struct {
	ID          uuid.UUID
	Owner       string
	Moment      string // YYYYMMDDHHMMSS, UTC
	Description string
	Image       string
	Star        int
	Favourite   bool
	Coordinates *Coordinates
}

// New constructs a Memory owned by owner at the given moment. It fails only
// when the image reference is unusable; description and rating are
// unconstrained (the rating is clamped, not rejected).
func New(owner string, moment time.Time, description string, image string, star int, favourite bool, coordinates *Coordinates) (Memory, error) {
	if image == "" {
		return Memory{}, fmt.Errorf("memory for %s: %w", owner, ErrNoImage)
	}
	return Memory{
		ID:          uuid.New(),
		Owner:       owner,
		Moment:      FormatMoment(moment),
		Description: description,
		Image:       image,
		Star:        clampStar(star),
		Favourite:   favourite,
		Coordinates: cloneCoordinates(coordinates),
	}, nil
}

// clampStar maps any out-of-range rating to 0. Documented quirk: out-of-range
// updates are silently reset, never rejected.
func clampStar(star int) int {
	if star < MinStar || star > MaxStar {
		return 0
	}
	return star
}

// WithRating returns a copy with the rating set to star when it falls within
// [0,5], and reset to 0 otherwise. Pure; persistence is the caller's problem.
func (m Memory) WithRating(star int) Memory {
	m.Star = clampStar(star)
	m.Coordinates = cloneCoordinates(m.Coordinates)
	return m
}

// WithFavourite returns a copy with the favourite flag replaced.
func (m Memory) WithFavourite(flag bool) Memory {
	m.Favourite = flag
	m.Coordinates = cloneCoordinates(m.Coordinates)
	return m
}

// Year returns the calendar year encoded in the moment string.
func (m Memory) Year() int {
	return momentYear(m.Moment)
}

// Time decodes the moment string back into a UTC time.
func (m Memory) Time() (time.Time, error) {
	return ParseMoment(m.Moment)
}

// YearsAgo returns a human-readable elapsed-time label relative to now.
func (m Memory) YearsAgo() string {
	return m.YearsAgoAt(time.Now())
}

// YearsAgoAt computes the label against an explicit reference time: "today"
// when the memory's year equals the reference year, "1 year ago" at exactly
// one elapsed year, "N years ago" beyond that.
func (m Memory) YearsAgoAt(ref time.Time) string {
	elapsed := ref.UTC().Year() - m.Year()
	switch {
	case elapsed <= 0:
		return "today"
	case elapsed == 1:
		return "1 year ago"
	default:
		return fmt.Sprintf("%d years ago", elapsed)
	}
}

// Coordinate returns the captured location for map display. The second
// result reports whether a location exists; map views filter on it before
// placing an annotation.
func (m Memory) Coordinate() (Coordinates, bool) {
	if m.Coordinates == nil {
		return Coordinates{}, false
	}
	return *m.Coordinates, true
}

// IsBundledImage reports whether ref names a locally bundled mock asset
// ("landscape1.png") rather than an opaque remote blob key.
func IsBundledImage(ref string) bool {
	parts := strings.Split(ref, ".")
	return len(parts) == 2 && parts[1] == "png"
}

func cloneCoordinates(c *Coordinates) *Coordinates {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
