package datetime

import (
	"testing"
	"time"
)

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{"Exact month boundary", "2021-12-01", "2022-01-01", 1},
		{"Thirteen full years", "2009-05-01", "2022-05-01", 156},
		{"Started month does not count", "2020-01-15", "2020-03-14", 1},
		{"Day reached counts the month", "2020-01-15", "2020-03-15", 2},
		{"Same date", "2020-06-10", "2020-06-10", 0},
		{"End before start clamps to zero", "2022-05-01", "2021-05-01", 0},
		{"Across year end", "2019-11-30", "2020-02-29", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := MustParseTime(DateLayout, tt.start)
			end := MustParseTime(DateLayout, tt.end)
			result := MonthsBetween(start, end)
			if result != tt.expected {
				t.Errorf("MonthsBetween(%s, %s) = %d, expected %d", tt.start, tt.end, result, tt.expected)
			}
		})
	}
}

func TestYearsAndMonths(t *testing.T) {
	years, months := YearsAndMonths(156)
	if years != 13 || months != 0 {
		t.Errorf("YearsAndMonths(156) = %d years %d months, expected 13 years 0 months", years, months)
	}
	years, months = YearsAndMonths(125)
	if years != 10 || months != 5 {
		t.Errorf("YearsAndMonths(125) = %d years %d months, expected 10 years 5 months", years, months)
	}
}

func TestInterestDays(t *testing.T) {
	tests := []struct {
		name       string
		payment    string
		completion string
		expected   int
	}{
		{"One 30-day month", "2021-12-01", "2022-01-01", 30},
		{"Full year", "2021-01-01", "2022-01-01", 360},
		{"Payment on completion day", "2022-01-01", "2022-01-01", 0},
		{"Payment after completion is negative", "2022-02-01", "2022-01-01", -30},
		{"Thirty-first capped to thirty", "2021-12-31", "2022-01-30", 30},
		{"Partial month", "2021-12-10", "2022-01-01", 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment := MustParseTime(DateLayout, tt.payment)
			completion := MustParseTime(DateLayout, tt.completion)
			result := InterestDays(payment, completion)
			if result != tt.expected {
				t.Errorf("InterestDays(%s, %s) = %d, expected %d", tt.payment, tt.completion, result, tt.expected)
			}
		})
	}
}

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{"First month of quarter", "2023-01-01", "2023-01-01"},
		{"Mid quarter", "2023-05-20", "2023-04-01"},
		{"Last month of year", "2023-12-31", "2023-10-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := QuarterOf(MustParseTime(DateLayout, tt.date))
			expected := MustParseTime(DateLayout, tt.expected)
			if !result.Equal(expected) {
				t.Errorf("QuarterOf(%s) = %s, expected %s", tt.date, result.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestSurfaceAreaCeilingValidUntil(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{"January to non-leap February end", "2023-01-15", "2023-02-28"},
		{"January to leap February end", "2024-01-15", "2024-02-29"},
		{"March to May end", "2023-03-15", "2023-05-31"},
		{"February to May end", "2023-02-01", "2023-05-31"},
		{"April to May end", "2023-04-30", "2023-05-31"},
		{"June to August end", "2023-06-10", "2023-08-31"},
		{"September to November end", "2023-09-01", "2023-11-30"},
		{"November rolls into next year", "2023-11-20", "2024-02-29"},
		{"December rolls into next year", "2022-12-05", "2023-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SurfaceAreaCeilingValidUntil(MustParseTime(DateLayout, tt.date))
			expected := MustParseTime(DateLayout, tt.expected)
			if !result.Equal(expected) {
				t.Errorf("SurfaceAreaCeilingValidUntil(%s) = %s, expected %s", tt.date, result.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestMonthOf(t *testing.T) {
	result := MonthOf(time.Date(2023, time.July, 19, 13, 45, 0, 0, time.UTC))
	expected := time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)
	if !result.Equal(expected) {
		t.Errorf("MonthOf = %s, expected %s", result, expected)
	}
}
