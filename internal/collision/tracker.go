package collision

import (
	"fmt"

	"github.com/arloliu/imd/errs"
)

// Tracker records channel names with their 64-bit identifiers and detects
// identifier collisions between distinct names.
type Tracker struct {
	names        map[uint64]string
	count        int
	hasCollision bool
}

// NewTracker creates a tracker sized for n channels.
func NewTracker(n int) *Tracker {
	return &Tracker{
		names: make(map[uint64]string, n),
	}
}

// Track records name under id.
//
// An empty name is errs.ErrInvalidChannelNames and a repeated name is
// errs.ErrDuplicateChannel. A different name sharing an id is not an error;
// it sets the collision flag and callers must fall back to names.
func (t *Tracker) Track(name string, id uint64) error {
	if name == "" {
		return fmt.Errorf("%w: empty channel name at index %d", errs.ErrInvalidChannelNames, t.count)
	}

	if existing, ok := t.names[id]; ok {
		if existing == name {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateChannel, name)
		}
		t.hasCollision = true
	} else {
		t.names[id] = name
	}
	t.count++

	return nil
}

// HasCollision reports whether two tracked names share an id.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}
