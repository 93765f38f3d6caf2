package session

import (
	"time"

	"github.com/mroldanv/presente/core"
)

// NowFunc returns the timestamp for newly started sessions. Mockable.
var NowFunc = time.Now

// Session is one held class of a course. Present and Justified are disjoint
// by invariant; a justified absence counts toward attendance the same as
// presence.
type Session struct {
	ID         int            `json:"id"`
	CourseCode string         `json:"course_code"`
	Date       time.Time      `json:"date"`
	Present    core.StringSet `json:"present"`
	Justified  core.StringSet `json:"justified"`
}

// Clone returns a deep copy (the mark sets are shared otherwise).
func (s Session) Clone() Session {
	s.Present = s.Present.Copy()
	s.Justified = s.Justified.Copy()
	return s
}

// Attended reports whether the student counts as having attended: either
// present or excused.
func (s Session) Attended(rut string) bool {
	return s.Present.Has(rut) || s.Justified.Has(rut)
}

// EditSession defines a partial session edit. A nil set leaves the stored one
// untouched; a supplied set replaces it after being restricted to current
// students on the current course roster.
type EditSession struct {
	Date      *time.Time     `json:"date"`
	Present   core.StringSet `json:"present"`
	Justified core.StringSet `json:"justified"`
}

// StudentAttendance is one row of a course attendance report.
type StudentAttendance struct {
	RUT         string  `json:"rut"`
	Name        string  `json:"name"`
	Percentage  float64 `json:"percentage"`
	MeetsMinimum bool   `json:"meets_minimum"`
}
