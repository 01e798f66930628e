package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-03-09")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year != 2024 || d.Month != time.March || d.Day != 9 {
		t.Errorf("ParseDate() = %+v", d)
	}
	if d.String() != "2024-03-09" {
		t.Errorf("String() = %q, want %q", d.String(), "2024-03-09")
	}

	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("expected error for invalid month")
	}
	if _, err := ParseDate("2024-03-09T10:00:00Z"); err == nil {
		t.Error("expected error for timestamp input")
	}
}

func TestDate_Compare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"same day", "2024-05-01", "2024-05-01", 0},
		{"earlier day", "2024-05-01", "2024-05-02", -1},
		{"later month", "2024-06-01", "2024-05-31", 1},
		{"earlier year", "2023-12-31", "2024-01-01", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MustDate(tt.a).Compare(MustDate(tt.b))
			if got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestToday_UsesLocationCalendarDay(t *testing.T) {
	t.Parallel()

	// 2024-01-01 03:00 UTC is still Dec 31 in Chicago.
	now := time.Date(2024, time.January, 1, 3, 0, 0, 0, time.UTC)
	chicago := time.FixedZone("CST", -6*60*60)

	if got := Today(now, time.UTC); got != MustDate("2024-01-01") {
		t.Errorf("Today(UTC) = %s", got)
	}
	if got := Today(now, chicago); got != MustDate("2023-12-31") {
		t.Errorf("Today(CST) = %s", got)
	}
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Date Date `json:"date"`
	}

	data, err := json.Marshal(wrapper{Date: MustDate("2024-07-04")})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"date":"2024-07-04"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"date":null}`), &w); err != nil {
		t.Fatalf("Unmarshal(null) error = %v", err)
	}
	if !w.Date.IsZero() {
		t.Errorf("expected zero date, got %s", w.Date)
	}

	if err := json.Unmarshal([]byte(`{"date":"07/04/2024"}`), &w); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestTimeFrame_Contains(t *testing.T) {
	t.Parallel()

	today := MustDate("2024-05-10")

	if !TimeFrameUpcoming.Contains(today, today) {
		t.Error("an event today should be upcoming")
	}
	if TimeFramePast.Contains(today, today) {
		t.Error("an event today should not be past")
	}
	if !TimeFramePast.Contains(MustDate("2024-05-09"), today) {
		t.Error("yesterday should be past")
	}
	if !TimeFrameAll.Contains(MustDate("1999-01-01"), today) {
		t.Error("all should contain every date")
	}
}

func TestParseScope(t *testing.T) {
	t.Parallel()

	if _, err := ParseScope("venue", ""); err == nil {
		t.Error("expected error for venue scope without id")
	}
	if _, err := ParseScope("planet", "x"); err == nil {
		t.Error("expected error for unknown kind")
	}

	s, err := ParseScope("admin", "")
	if err != nil {
		t.Fatalf("ParseScope(admin) error = %v", err)
	}
	if s.String() != "admin" {
		t.Errorf("String() = %q", s.String())
	}

	if VenueScope("v1").String() != "venue:v1" {
		t.Errorf("VenueScope String() = %q", VenueScope("v1").String())
	}
}
