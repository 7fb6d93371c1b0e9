package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day without time of day. The zero Date is stored as NULL and rendered as "".
type Date time.Time

func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) Time() time.Time { return time.Time(d) }
func (d Date) IsZero() bool    { return time.Time(d).IsZero() }
func (d Date) Before(o Date) bool {
	return time.Time(d).Before(time.Time(o))
}
func (d Date) After(o Date) bool {
	return time.Time(d).After(time.Time(o))
}

// EndOfDay returns the last instant of the day.
func (d Date) EndOfDay() time.Time {
	return time.Time(d).Add(24*time.Hour - time.Nanosecond)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return time.Time(d).Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*d = Date{}
		return nil
	}
	return d.UnmarshalParam(*s)
}

// UnmarshalParam binds a date from a query or form value.
func (d *Date) UnmarshalParam(s string) error {
	if CleanString(s) == "" {
		*d = Date{}
		return nil
	}
	t, ok := ParseDate(s)
	if !ok {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = DateOf(t)
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return time.Time(d), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v)
	case string:
		t, _ := ParseDate(v)
		*d = DateOf(t)
	case []byte:
		t, _ := ParseDate(string(v))
		*d = DateOf(t)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}
