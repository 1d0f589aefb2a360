package booking

import (
	"errors"
	"testing"
	"time"
)

func TestSlots(t *testing.T) {
	got := Slots()
	if len(got) != 18 {
		t.Fatalf("len(Slots()) = %d, want 18", len(got))
	}
	if got[0] != "09:00 AM" || got[len(got)-1] != "05:30 PM" {
		t.Errorf("Slots() runs %q to %q, want 09:00 AM to 05:30 PM", got[0], got[len(got)-1])
	}
	if !IsSlot("12:00 PM") || !IsSlot("12:30 PM") {
		t.Error("noon slots missing")
	}
	if IsSlot("06:00 PM") || IsSlot("08:30 AM") || IsSlot("9:00 AM") {
		t.Error("IsSlot accepted a label outside the list")
	}

	got[0] = "changed"
	if Slots()[0] != "09:00 AM" {
		t.Error("Slots() shares its backing array")
	}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in         string
		hour, min  int
		wantErrors bool
	}{
		{"09:00 AM", 9, 0, false},
		{"02:30 PM", 14, 30, false},
		{"12:00 PM", 12, 0, false},
		{"12:30 AM", 0, 30, false},
		{"05:30 pm", 17, 30, false},
		{"13:00 PM", 0, 0, true},
		{"10:00", 0, 0, true},
		{"10:75 AM", 0, 0, true},
		{"ab:00 AM", 0, 0, true},
		{"10:00 XM", 0, 0, true},
	}
	for _, tt := range tests {
		h, m, err := ParseSlot(tt.in)
		if tt.wantErrors {
			if !errors.Is(err, ErrInvalidSlot) {
				t.Errorf("ParseSlot(%q) error = %v, want ErrInvalidSlot", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSlot(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if h != tt.hour || m != tt.min {
			t.Errorf("ParseSlot(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.hour, tt.min)
		}
	}
}

func TestCombine(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	date := time.Date(2024, 7, 20, 23, 59, 59, 999, loc)

	got, err := Combine(date, "02:30 PM", loc)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	want := time.Date(2024, 7, 20, 14, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("Combine = %v, want %v", got, want)
	}
	if got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("Combine kept sub-minute precision: %v", got)
	}

	noon, err := Combine(date, "12:00 PM", loc)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if noon.Hour() != 12 {
		t.Errorf("12:00 PM combined to hour %d, want 12", noon.Hour())
	}

	if _, err := Combine(date, "noon", loc); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("Combine(noon) error = %v, want ErrInvalidSlot", err)
	}
}
