package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotLength is the span of one bookable slot.
const SlotLength = 30 * time.Minute

const (
	firstSlotHour = 9
	lastSlotHour  = 17 // the 05:30 PM slot is the last one
)

var ErrInvalidSlot = errors.New("invalid time slot")

var slots = buildSlots()

func buildSlots() []string {
	var out []string
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		for _, m := range []int{0, 30} {
			out = append(out, formatSlot(h, m))
		}
	}
	return out
}

func formatSlot(hour, minute int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h, minute, suffix)
}

// Slots returns the bookable slot labels, "09:00 AM" through "05:30 PM".
func Slots() []string {
	out := make([]string, len(slots))
	copy(out, slots)
	return out
}

// IsSlot reports whether label is one of the bookable slots.
func IsSlot(label string) bool {
	for _, s := range slots {
		if s == label {
			return true
		}
	}
	return false
}

// ParseSlot parses a 12-hour "hh:mm AM" label. 12 AM is hour 0 and 12 PM
// stays 12.
func ParseSlot(label string) (hour, minute int, err error) {
	clock, suffix, ok := strings.Cut(strings.TrimSpace(label), " ")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	hs, ms, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	hour, err = strconv.Atoi(hs)
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidSlot, label)
	}
	minute, err = strconv.Atoi(ms)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidSlot, label)
	}
	switch strings.ToUpper(strings.TrimSpace(suffix)) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, 0, fmt.Errorf("%w: missing AM/PM in %q", ErrInvalidSlot, label)
	}
	return hour, minute, nil
}

// Combine puts the slot's time of day on date's calendar day in loc, with
// zero seconds and nanoseconds.
func Combine(date time.Time, label string, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseSlot(label)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = date.Location()
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), nil
}
