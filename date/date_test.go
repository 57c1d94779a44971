package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestDaysUntil(t *testing.T) {
	testCases := []struct {
		name     string
		from, to string
		want     int
	}{
		{name: "same day", from: "2024-03-01", to: "2024-03-01", want: 0},
		{name: "one year no leap day", from: "2022-01-01", to: "2023-01-01", want: 365},
		{name: "one year across leap day", from: "2024-01-01", to: "2025-01-01", want: 366},
		{name: "backward", from: "2024-02-10", to: "2024-01-11", want: -30},
		{name: "across month end", from: "2024-01-31", to: "2024-03-01", want: 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MustParse(tc.from).DaysUntil(MustParse(tc.to))
			if got != tc.want {
				t.Errorf("DaysUntil(%s, %s) = %d, want %d", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestOf(t *testing.T) {
	// late evening in New York is still the same calendar day locally.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("no tz database: %v", err)
	}
	got := Of(time.Date(2024, time.December, 31, 23, 30, 0, 0, ny))
	if want := New(2024, time.December, 31); got != want {
		t.Errorf("Of() = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("2025-7-1")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if d.String() != "2025-07-01" {
		t.Errorf("Parse() = %s, want 2025-07-01", d)
	}
	if _, err := Parse("yesterday"); err == nil {
		t.Error("Parse(\"yesterday\") expected an error")
	}
}

func TestYear(t *testing.T) {
	r := Year(2024)
	testCases := []struct {
		on   string
		want bool
	}{
		{"2023-12-31", false},
		{"2024-01-01", true},
		{"2024-12-31", true},
		{"2025-01-01", false},
	}
	for _, tc := range testCases {
		if got := r.Contains(MustParse(tc.on)); got != tc.want {
			t.Errorf("Year(2024).Contains(%s) = %v, want %v", tc.on, got, tc.want)
		}
	}
	if got := r.Extend(30).To; got != MustParse("2025-01-30") {
		t.Errorf("Extend(30).To = %s, want 2025-01-30", got)
	}
}
