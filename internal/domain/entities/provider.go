package entities

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ParseWeekday resolves an English weekday name ("Monday", "monday", "mon").
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || (len(n) == 3 && strings.HasPrefix(full, n)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", name)
}

// SlotSet is a set of grid slots.
type SlotSet map[Slot]struct{}

// Has reports membership.
func (s SlotSet) Has(slot Slot) bool {
	_, ok := s[slot]
	return ok
}

// Sorted returns the slots in time order.
func (s SlotSet) Sorted() []Slot {
	out := make([]Slot, 0, len(s))
	for slot := range s {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minutes() < out[j].Minutes() })
	return out
}

// WeeklyTemplate maps a weekday to the slots a provider works on that day.
type WeeklyTemplate map[time.Weekday]SlotSet

// Slots returns the template for a weekday; absent days are empty.
func (w WeeklyTemplate) Slots(day time.Weekday) SlotSet {
	if w == nil {
		return SlotSet{}
	}
	if set, ok := w[day]; ok {
		return set
	}
	return SlotSet{}
}

// MarshalJSON writes {"Monday": ["09:00", "09:30"], ...}.
func (w WeeklyTemplate) MarshalJSON() ([]byte, error) {
	out := make(map[string][]Slot, len(w))
	for day, set := range w {
		if len(set) == 0 {
			continue
		}
		out[day.String()] = set.Sorted()
	}
	return json.Marshal(out)
}

func (w *WeeklyTemplate) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tmpl := make(WeeklyTemplate, len(raw))
	for name, slots := range raw {
		day, err := ParseWeekday(name)
		if err != nil {
			return err
		}
		set := make(SlotSet, len(slots))
		for _, s := range slots {
			slot, err := ParseSlot(s)
			if err != nil {
				return err
			}
			set[slot] = struct{}{}
		}
		tmpl[day] = set
	}
	*w = tmpl
	return nil
}

// DateSet is a set of calendar days.
type DateSet map[Date]struct{}

// Has reports membership.
func (s DateSet) Has(d Date) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the days in calendar order.
func (s DateSet) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s DateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *DateSet) UnmarshalJSON(data []byte) error {
	var days []Date
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	set := make(DateSet, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	*s = set
	return nil
}

// Provider is a care provider with a recurring weekly schedule and day-off exceptions.
type Provider struct {
	ID             string         `json:"id" db:"id"`
	Name           string         `json:"name" db:"name"`
	Specialty      string         `json:"specialty" db:"specialty"`
	WeeklyTemplate WeeklyTemplate `json:"weekly_template" db:"weekly_template"`
	ExceptionDates DateSet        `json:"exception_dates" db:"exception_dates"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// IsOff reports whether d is one of the provider's exception dates.
func (p *Provider) IsOff(d Date) bool {
	return p.ExceptionDates.Has(d)
}

// Works reports whether slot is part of the template for d's weekday.
func (p *Provider) Works(d Date, slot Slot) bool {
	return p.WeeklyTemplate.Slots(d.Weekday()).Has(slot)
}

// ToggleException flips membership of d in the exception dates and reports
// whether d is now an exception.
func (p *Provider) ToggleException(d Date) bool {
	if p.ExceptionDates == nil {
		p.ExceptionDates = DateSet{}
	}
	if p.ExceptionDates.Has(d) {
		delete(p.ExceptionDates, d)
		return false
	}
	p.ExceptionDates[d] = struct{}{}
	return true
}

// ToggleWeeklySlot flips membership of slot in the template of day and reports
// whether the slot is now offered.
func (p *Provider) ToggleWeeklySlot(day time.Weekday, slot Slot) bool {
	if p.WeeklyTemplate == nil {
		p.WeeklyTemplate = WeeklyTemplate{}
	}
	set, ok := p.WeeklyTemplate[day]
	if !ok {
		set = SlotSet{}
		p.WeeklyTemplate[day] = set
	}
	if set.Has(slot) {
		delete(set, slot)
		if len(set) == 0 {
			delete(p.WeeklyTemplate, day)
		}
		return false
	}
	set[slot] = struct{}{}
	return true
}

// Clone returns a deep copy so stores never share sets with callers.
func (p *Provider) Clone() *Provider {
	if p == nil {
		return nil
	}
	c := *p
	c.WeeklyTemplate = make(WeeklyTemplate, len(p.WeeklyTemplate))
	for day, set := range p.WeeklyTemplate {
		cs := make(SlotSet, len(set))
		for s := range set {
			cs[s] = struct{}{}
		}
		c.WeeklyTemplate[day] = cs
	}
	c.ExceptionDates = make(DateSet, len(p.ExceptionDates))
	for d := range p.ExceptionDates {
		c.ExceptionDates[d] = struct{}{}
	}
	return &c
}
