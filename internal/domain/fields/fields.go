package fields

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cineconsole/proj/internal/lib/apperr"
)

// WireLayout is the backend's showtime format, dd/MM/yyyy HH:mm:ss.
const WireLayout = "02/01/2006 15:04:05"

// ReleaseLayout is the backend's release date format for form submissions, dd/MM/yyyy.
const ReleaseLayout = "02/01/2006"

const FieldShowDateTime = "ngayChieuGioChieu"

// localLayouts are the editable datetime shapes accepted from forms.
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseLocal parses an editable local datetime in loc. Malformed input fails
// with a ValidationError naming the showtime field.
func ParseLocal(input string, loc *time.Location) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, apperr.NewValidationError(FieldShowDateTime, "This field is required")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.NewValidationError(
		FieldShowDateTime,
		fmt.Sprintf("Value %q is not a valid date and time (expected yyyy-MM-ddTHH:mm)", input),
	)
}

// ToWireFormat converts an editable local datetime into dd/MM/yyyy HH:mm:ss.
// The wall clock fields are kept as entered.
func ToWireFormat(input string) (string, error) {
	t, err := ParseLocal(input, time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format(WireLayout), nil
}

// ParseWire parses a dd/MM/yyyy HH:mm:ss string in loc.
func ParseWire(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(WireLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, apperr.NewValidationError(FieldShowDateTime, fmt.Sprintf("Value %q is not in dd/MM/yyyy HH:mm:ss format", s))
	}
	return t, nil
}

// IsStrictlyFuture reports whether input, read in now's location, is strictly
// later than now.
func IsStrictlyFuture(input string, now time.Time) (bool, error) {
	t, err := ParseLocal(input, now.Location())
	if err != nil {
		return false, err
	}
	return t.After(now), nil
}

// WireDateTime marshals to the backend showtime format.
type WireDateTime time.Time

func (w WireDateTime) String() string {
	return time.Time(w).Format(WireLayout)
}

func (w WireDateTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(w.String())), nil
}

func (w *WireDateTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*w = WireDateTime{}
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("wire datetime: %w", err)
	}
	t, err := parseAny(s, append([]string{WireLayout}, isoLayouts...))
	if err != nil {
		return err
	}
	*w = WireDateTime(t)
	return nil
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ReleaseDate is a movie release date. The backend returns ISO timestamps and
// expects dd/MM/yyyy on submission.
type ReleaseDate time.Time

func ParseReleaseDate(s string) (ReleaseDate, error) {
	t, err := parseAny(s, append([]string{ReleaseLayout}, isoLayouts...))
	if err != nil {
		return ReleaseDate{}, apperr.NewValidationError("ngayKhoiChieu", fmt.Sprintf("Value %q is not a valid date", s))
	}
	return ReleaseDate(t), nil
}

func (d ReleaseDate) IsZero() bool { return time.Time(d).IsZero() }

// Wire returns the dd/MM/yyyy form used in multipart submissions.
func (d ReleaseDate) Wire() string { return time.Time(d).Format(ReleaseLayout) }

func (d ReleaseDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(time.Time(d).Format("2006-01-02T15:04:05"))
}

func (d *ReleaseDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = ReleaseDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("release date: %w", err)
	}
	if s == "" {
		*d = ReleaseDate{}
		return nil
	}
	t, err := parseAny(s, append([]string{ReleaseLayout}, isoLayouts...))
	if err != nil {
		return err
	}
	*d = ReleaseDate(t)
	return nil
}

func parseAny(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// FlexString decodes identifiers the backend sends either as JSON strings or as numbers.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }
