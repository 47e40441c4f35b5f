package generic

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CALENDAR DATE - Day-granular date in the worksheet's DD-MM-YYYY shape
// =============================================================================

// DateLayout is the canonical worksheet date layout (DD-MM-YYYY).
const DateLayout = "02-01-2006"

type CalendarDate struct {
	Time time.Time
}

func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d CalendarDate) Year() int         { return d.Time.Year() }
func (d CalendarDate) Month() time.Month { return d.Time.Month() }
func (d CalendarDate) Day() int          { return d.Time.Day() }
func (d CalendarDate) IsZero() bool      { return d.Time.IsZero() }
func (d CalendarDate) String() string    { return d.Time.Format(DateLayout) }

var (
	canonicalDate = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	dayFirstDate  = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})$`)
	isoDate       = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

// ParseDate reads a day-first date (DD-MM-YYYY, with unpadded fields or '/'
// and '.' separators tolerated) or an ISO YYYY-MM-DD date as emitted by HTML date
// inputs. Any other shape, and any calendar-invalid date, returns false.
func ParseDate(s string) (CalendarDate, bool) {
	s = strings.TrimSpace(s)
	var day, month, year string
	if m := dayFirstDate.FindStringSubmatch(s); m != nil {
		day, month, year = m[1], m[2], m[3]
	} else if m := isoDate.FindStringSubmatch(s); m != nil {
		year, month, day = m[1], m[2], m[3]
	} else {
		return CalendarDate{}, false
	}

	d, _ := strconv.Atoi(day)
	mo, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)

	date := NewCalendarDate(y, time.Month(mo), d)
	// time.Date normalizes overflow (31-02 becomes 02-03), so reject it.
	if date.Day() != d || int(date.Month()) != mo || date.Year() != y {
		return CalendarDate{}, false
	}
	return date, true
}

// FormatDate renders text as DD-MM-YYYY. Text already in that shape is
// returned unchanged; unparsable text is also returned unchanged.
func FormatDate(s string) string {
	if canonicalDate.MatchString(s) {
		return s
	}
	d, ok := ParseDate(s)
	if !ok {
		return s
	}
	return d.String()
}

// =============================================================================
// DAY DIFFERENCE - Numeric day count or the NotApplicable sentinel
// =============================================================================

// DayDiff is either a positive whole number of days or NotApplicable.
// The zero value is NotApplicable.
type DayDiff struct {
	days    int
	numeric bool
}

// NotApplicable is the sentinel for a missing or non-positive day difference.
var NotApplicable = DayDiff{}

// NumericDays builds a numeric DayDiff.
func NumericDays(n int) DayDiff { return DayDiff{days: n, numeric: true} }

func (d DayDiff) Days() (int, bool) { return d.days, d.numeric }
func (d DayDiff) IsNumeric() bool   { return d.numeric }

func (d DayDiff) String() string {
	if !d.numeric {
		return "N/A"
	}
	return strconv.Itoa(d.days)
}

func (d DayDiff) MarshalJSON() ([]byte, error) {
	if !d.numeric {
		return []byte("null"), nil
	}
	return json.Marshal(d.days)
}

func (d *DayDiff) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = NotApplicable
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("day difference: %w", err)
	}
	*d = NumericDays(n)
	return nil
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns how many whole days dueDate lies after paymentDate.
// Unparsable dates and payments on or after the due date yield NotApplicable.
func DaysBetween(dueDate, paymentDate string) DayDiff {
	due, ok := ParseDate(dueDate)
	if !ok {
		return NotApplicable
	}
	paid, ok := ParseDate(paymentDate)
	if !ok {
		return NotApplicable
	}

	// Both dates are UTC midnight, so the gap is a whole multiple of a day.
	// time.Duration saturates past ~292 years, seconds do not.
	days := int((due.Time.Unix() - paid.Time.Unix()) / secondsPerDay)
	if days <= 0 {
		return NotApplicable
	}
	return NumericDays(days)
}
