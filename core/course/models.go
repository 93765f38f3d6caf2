package course

import (
	"fmt"
	"strings"

	"github.com/mroldanv/presente/core"
)

const (
	MinSections = 1
	MaxSections = 3

	MinAttendanceFloor   = 60.0
	MinAttendanceCeil    = 100.0
	DefaultMinAttendance = 60.0

	// ClosedMarker is appended to the display name when a course is closed.
	ClosedMarker = " (CERRADO)"

	sectionInfix = " - Sección "
)

// Course is one teachable unit in an account's partition, possibly one
// section of a family sharing a base code. Closed is a one-way flag: once
// set, the course and its sessions are immutable.
type Course struct {
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	Schedule      string         `json:"schedule"`
	Roster        core.StringSet `json:"roster"`
	Closed        bool           `json:"closed"`
	MinAttendance float64        `json:"min_attendance"`
}

// Clone returns a deep copy (the roster set is shared otherwise).
func (c Course) Clone() Course {
	c.Roster = c.Roster.Copy()
	return c
}

// IsSection reports whether the course is one section of a multi-section
// family, recognized by the section infix in its display name.
func (c Course) IsSection() bool {
	return strings.Contains(c.Name, sectionInfix)
}

// BaseName returns the display name up to the first " - " separator.
func (c Course) BaseName() string {
	return strings.SplitN(c.Name, " - ", 2)[0]
}

// BaseCode returns the code up to the first section suffix.
func BaseCode(code string) string {
	return strings.SplitN(code, "-", 2)[0]
}

// SectionCode and SectionName derive a section's code and display name from
// the family's base values.
func SectionCode(baseCode string, i int) string {
	return fmt.Sprintf("%s-%d", baseCode, i)
}

func SectionName(baseName string, i int) string {
	return fmt.Sprintf("%s%s%d", baseName, sectionInfix, i)
}

// NewCourse contains information needed to create a course, alone or as a
// family of up to MaxSections sections with disjoint rosters.
type NewCourse struct {
	Code     string                 `json:"code" validate:"required"`
	Name     string                 `json:"name" validate:"required"`
	Schedule string                 `json:"schedule"`
	Sections int                    `json:"sections" validate:"min=1,max=3"`
	Rosters  map[int]core.StringSet `json:"rosters"` // 1-based section index -> RUTs
}

func (nc *NewCourse) Validate() error {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Schedule = core.CleanString(nc.Schedule)
	if nc.Sections == 0 {
		nc.Sections = 1
	}
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what may be changed on an open course.
type UpdateCourse struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Schedule string `json:"schedule"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Code = core.CleanString(uc.Code)
	uc.Name = core.CleanString(uc.Name)
	uc.Schedule = core.CleanString(uc.Schedule)
	return core.Validate.Struct(uc)
}
