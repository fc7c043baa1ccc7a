package restaurant

import "testing"

func validRestaurant() *Restaurant {
	return &Restaurant{
		ID:       "r1",
		Timezone: "America/Argentina/Buenos_Aires",
		Shifts: []Shift{
			{StartLocal: "12:00", EndLocal: "16:00"},
			{StartLocal: "20:00", EndLocal: "23:45"},
		},
		DefaultDurationMin: 90,
		DurationRules: []DurationRule{
			{MaxPartySize: 2, DurationMinutes: 75},
			{MaxPartySize: 4, DurationMinutes: 90},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validRestaurant().Validate(); err != nil {
		t.Fatalf("expected valid restaurant to pass, got %v", err)
	}
}

func TestValidate_UnknownTimezone(t *testing.T) {
	r := validRestaurant()
	r.Timezone = "Not/A_Zone"
	if err := r.Validate(); err != ErrInvalidTimezone {
		t.Fatalf("want ErrInvalidTimezone, got %v", err)
	}
}

func TestValidate_ShiftSpansMidnight(t *testing.T) {
	r := validRestaurant()
	r.Shifts = []Shift{{StartLocal: "22:00", EndLocal: "02:00"}}
	if err := r.Validate(); err != ErrInvalidShift {
		t.Fatalf("want ErrInvalidShift, got %v", err)
	}
}

func TestValidate_ShiftStartNotBeforeEnd(t *testing.T) {
	r := validRestaurant()
	r.Shifts = []Shift{{StartLocal: "16:00", EndLocal: "16:00"}}
	if err := r.Validate(); err != ErrInvalidShift {
		t.Fatalf("want ErrInvalidShift, got %v", err)
	}
}

func TestValidate_DurationRulesNotAscending(t *testing.T) {
	r := validRestaurant()
	r.DurationRules = []DurationRule{
		{MaxPartySize: 4, DurationMinutes: 90},
		{MaxPartySize: 4, DurationMinutes: 120},
	}
	if err := r.Validate(); err != ErrInvalidDuration {
		t.Fatalf("want ErrInvalidDuration, got %v", err)
	}
}

func TestValidate_NonPositiveDuration(t *testing.T) {
	r := validRestaurant()
	r.DurationRules = []DurationRule{{MaxPartySize: 2, DurationMinutes: 0}}
	if err := r.Validate(); err != ErrInvalidDuration {
		t.Fatalf("want ErrInvalidDuration, got %v", err)
	}
}

func TestValidate_NonPositiveDefaultDuration(t *testing.T) {
	r := validRestaurant()
	r.DefaultDurationMin = 0
	if err := r.Validate(); err != ErrInvalidDuration {
		t.Fatalf("want ErrInvalidDuration, got %v", err)
	}
}
