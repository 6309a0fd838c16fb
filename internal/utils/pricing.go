package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the yyyy-mm-dd format used for booking dates on the wire.
const DateLayout = "2006-01-02"

const hoursPerDay = 24

// ParseDate converts a yyyy-mm-dd formatted string into a UTC midnight time
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %v", err)
	}
	return t, nil
}

// TruncateToDate drops the time-of-day component, interpreting t in UTC
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InclusiveDays counts calendar days in [start, end], counting both ends.
// A same-day rental is one day.
func InclusiveDays(start, end time.Time) (int64, error) {
	s := TruncateToDate(start)
	e := TruncateToDate(end)
	if e.Before(s) {
		return 0, fmt.Errorf("end date must be >= start date")
	}
	// Both values are UTC midnights so the hour count is an exact multiple of 24.
	return int64(e.Sub(s).Hours()/hoursPerDay) + 1, nil
}

// CalculateRentalCost returns dailyPriceCents * inclusive day count.
func CalculateRentalCost(startDate, endDate time.Time, dailyPriceCents int64) (int64, error) {
	if dailyPriceCents < 0 {
		return 0, fmt.Errorf("daily price must not be negative")
	}
	days, err := InclusiveDays(startDate, endDate)
	if err != nil {
		return 0, err
	}
	if dailyPriceCents > 0 && days > math.MaxInt64/dailyPriceCents {
		return 0, fmt.Errorf("rental cost overflows")
	}
	return days * dailyPriceCents, nil
}
