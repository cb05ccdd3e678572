package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// Date is a due date as sent by clients: either a calendar date ("2006-01-02",
// taken as midnight UTC) or a full RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("due date must be a string: %w", err)
	}
	if t, err := time.Parse(dateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("due date %q is neither YYYY-MM-DD nor RFC 3339", s)
	}
	d.Time = t
	return nil
}

// TimePtr returns the date as a *time.Time, nil when d is nil.
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
