package entities

import (
	"fmt"
	"time"
)

// SlotLayout is the "HH:MM" format of a grid slot.
const SlotLayout = "15:04"

// Slot is one time-of-day mark of the booking grid, e.g. "09:30".
type Slot string

// ParseSlot validates the "HH:MM" shape of s. It does not check grid membership.
func ParseSlot(s string) (Slot, error) {
	t, err := time.Parse(SlotLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid slot %q: expected HH:MM", s)
	}
	return Slot(t.Format(SlotLayout)), nil
}

// Minutes returns minutes since midnight, or -1 for malformed slots.
func (s Slot) Minutes() int {
	t, err := time.Parse(SlotLayout, string(s))
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

func (s Slot) String() string {
	return string(s)
}

// GridBounds are the explicit inputs of the slot grid.
type GridBounds struct {
	StartMinutes int // first slot, minutes since midnight
	EndMinutes   int // last slot, inclusive
	StepMinutes  int
}

// DefaultGridBounds is 06:00 to 22:00 inclusive every 30 minutes.
var DefaultGridBounds = GridBounds{
	StartMinutes: 6 * 60,
	EndMinutes:   22 * 60,
	StepMinutes:  30,
}

// GenerateGrid returns the ordered slots between the bounds. Invalid bounds yield an empty grid.
func GenerateGrid(b GridBounds) []Slot {
	if b.StepMinutes <= 0 || b.StartMinutes < 0 || b.EndMinutes >= 24*60 || b.EndMinutes < b.StartMinutes {
		return nil
	}
	slots := make([]Slot, 0, (b.EndMinutes-b.StartMinutes)/b.StepMinutes+1)
	for m := b.StartMinutes; m <= b.EndMinutes; m += b.StepMinutes {
		slots = append(slots, Slot(fmt.Sprintf("%02d:%02d", m/60, m%60)))
	}
	return slots
}

var (
	defaultGrid      = GenerateGrid(DefaultGridBounds)
	defaultGridIndex = indexGrid(defaultGrid)
)

func indexGrid(grid []Slot) map[Slot]struct{} {
	idx := make(map[Slot]struct{}, len(grid))
	for _, s := range grid {
		idx[s] = struct{}{}
	}
	return idx
}

// DefaultGrid returns a copy of the business-day grid (33 slots).
func DefaultGrid() []Slot {
	out := make([]Slot, len(defaultGrid))
	copy(out, defaultGrid)
	return out
}

// IsGridSlot reports whether s belongs to the default grid.
func IsGridSlot(s Slot) bool {
	_, ok := defaultGridIndex[s]
	return ok
}

// SlotAvailability is one row of a resolved day.
type SlotAvailability struct {
	Slot        Slot `json:"slot"`
	IsAvailable bool `json:"is_available"`
	IsBooked    bool `json:"is_booked"`
	// Blocked is set when the whole day is an exception date for the provider.
	Blocked bool `json:"blocked,omitempty"`
}
