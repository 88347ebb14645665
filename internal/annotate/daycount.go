package annotate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

const msPerDay = 24 * 60 * 60 * 1000

// ErrUnparseable is returned when a date token cannot be parsed.
var ErrUnparseable = errors.New("unparseable date token")

// Bucket is the severity classification derived from a day-count.
type Bucket string

const (
	Long     Bucket = "long"
	Short    Bucket = "short"
	Urgent   Bucket = "urgent"
	Critical Bucket = "critical"
)

// Buckets lists all buckets from least to most severe.
var Buckets = []Bucket{Long, Short, Urgent, Critical}

// DayCount is an optional signed number of days until a target date.
// Valid is false when the date token could not be parsed.
type DayCount struct {
	Days  int
	Valid bool
}

func (d DayCount) String() string {
	if !d.Valid {
		return "NaN"
	}
	return strconv.Itoa(d.Days)
}

// ExtractToken returns text up to (not including) the first whitespace character.
func ExtractToken(text string) string {
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		return text[:i]
	}
	return text
}

// ParseDateToken parses a date token. Date-only tokens resolve to midnight in loc.
func ParseDateToken(token string, loc *time.Location) (time.Time, error) {
	if token == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnparseable)
	}
	if loc == nil {
		loc = time.Local
	}
	// dateparse fills in missing fields of truncated tokens like "2024-01-"
	// or "Mon,"; those are not dates.
	last, _ := utf8.DecodeLastRuneInString(token)
	if !unicode.IsLetter(last) && !unicode.IsDigit(last) {
		return time.Time{}, fmt.Errorf("%w %q: truncated", ErrUnparseable, token)
	}
	t, err := dateparse.ParseIn(token, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrUnparseable, token, err)
	}
	if t.Year() == 0 {
		return time.Time{}, fmt.Errorf("%w %q: no year", ErrUnparseable, token)
	}
	return t, nil
}

// DaysUntil returns ceil((target - now) / 1 day) at millisecond resolution.
// A target a few hours ahead counts as 1, a few hours behind as 0.
func DaysUntil(now, target time.Time) int {
	diff := target.UnixMilli() - now.UnixMilli()
	days := math.Ceil(float64(diff) / msPerDay)
	if days == 0 {
		return 0 // ceil of a small negative is -0
	}
	return int(days)
}

// Classify maps a day-count to its bucket. Checks run top-down, first match wins;
// an invalid count is critical.
func Classify(d DayCount) Bucket {
	switch {
	case !d.Valid:
		return Critical
	case d.Days >= 10:
		return Long
	case d.Days >= 5:
		return Short
	case d.Days >= 1:
		return Urgent
	default:
		return Critical
	}
}

// inDisplayWindow reports whether the count is shown as a bracketed suffix.
func inDisplayWindow(d DayCount) bool {
	return d.Valid && d.Days >= 0 && d.Days <= 9
}
