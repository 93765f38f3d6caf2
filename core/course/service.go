package course

import (
	"errors"
	"fmt"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/rut"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrCodeExists      = errors.New("a course with this code already exists")
	ErrCodeTakenGlobal = errors.New("a course with this base code exists in another account")
	ErrNameExists      = errors.New("a course with this name already exists")
	ErrBaseNameExists  = errors.New("a course family with this base name already exists")
	ErrClosed          = errors.New("this course is closed and can no longer be modified")
	ErrAlreadyClosed   = errors.New("this course is already closed")
	ErrSectionRename   = errors.New("the name of a section cannot be changed directly")
	ErrRosterConflict  = errors.New("a student is already assigned to another section of this course")
)

type (
	Repository interface {
		// CreateCourses inserts a whole family atomically. It fails with
		// ErrCodeTakenGlobal when the base code collides with any other
		// account's courses, and with ErrCodeExists / ErrNameExists /
		// ErrBaseNameExists on per-partition duplicates.
		CreateCourses(accountID int, courses []Course) ([]Course, error)
		GetCourse(accountID int, code string) (Course, error)
		QueryCourses(accountID int) ([]Course, error)
		// UpdateCourse re-keys the course when its code changed, propagating
		// the rename into every session referencing the old code.
		UpdateCourse(accountID int, oldCode string, co Course) (Course, error)
		// AssignRoster replaces the roster wholesale. It fails with
		// ErrRosterConflict when a RUT already belongs to a sibling section.
		AssignRoster(accountID int, code string, roster core.StringSet) (Course, error)
		// CloseCourse flips the one-way flag and appends the closed marker to
		// the display name.
		CloseCourse(accountID int, code string) (Course, error)
		SetMinAttendance(accountID int, code string, pct float64) (Course, error)
		// DeleteCourse cascades deletion of every session referencing the code.
		DeleteCourse(accountID int, code string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func mapUniquenessErr(err error) error {
	switch err {
	case ErrCodeExists, ErrCodeTakenGlobal:
		return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
	case ErrNameExists, ErrBaseNameExists:
		return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
	default:
		return err
	}
}

// Create builds one course, or a family of nc.Sections sections with codes
// "{base}-{i}" and names "{base} - Sección {i}", each with its own roster
// subset. A student may appear in at most one section of the family.
func (svc *Service) Create(accountID int, nc NewCourse) ([]Course, error) {
	if err := nc.Validate(); err != nil {
		return nil, err
	}

	rosters := make(map[int]core.StringSet, len(nc.Rosters))
	for i, roster := range nc.Rosters {
		rosters[i] = cleanRoster(roster)
	}

	// a RUT present in two section rosters makes the union smaller than the sum
	union := make(core.StringSet)
	var total int
	for _, roster := range rosters {
		union = union.Union(roster)
		total += len(roster)
	}
	if len(union) != total {
		return nil, core.NewValidationError(ErrRosterConflict,
			core.FieldError{Field: "rosters", Error: "a student cannot be assigned to two sections of the same course"})
	}

	courses := make([]Course, 0, nc.Sections)
	for i := 1; i <= nc.Sections; i++ {
		co := Course{
			Code:          nc.Code,
			Name:          nc.Name,
			Schedule:      nc.Schedule,
			Roster:        rosters[i],
			MinAttendance: DefaultMinAttendance,
		}
		if nc.Sections > 1 {
			co.Code = SectionCode(nc.Code, i)
			co.Name = SectionName(nc.Name, i)
		}
		if co.Roster == nil {
			co.Roster = make(core.StringSet)
		}
		courses = append(courses, co)
	}

	created, err := svc.repo.CreateCourses(accountID, courses)
	if err != nil {
		return nil, mapUniquenessErr(err)
	}
	return created, nil
}

func (svc *Service) Get(accountID int, code string) (Course, error) {
	return svc.repo.GetCourse(accountID, code)
}

func (svc *Service) QueryAll(accountID int) ([]Course, error) {
	return svc.repo.QueryCourses(accountID)
}

// Update edits an open course's code, name and schedule. Sections keep their
// derived name; standalone courses are checked against other standalone
// course names.
func (svc *Service) Update(accountID int, oldCode string, uc UpdateCourse) (Course, error) {
	if err := uc.Validate(); err != nil {
		return Course{}, err
	}

	cur, err := svc.repo.GetCourse(accountID, oldCode)
	if err != nil {
		return Course{}, err
	}
	if cur.Closed {
		return Course{}, core.NewValidationError(ErrClosed)
	}
	if cur.IsSection() && core.CleanString(uc.Name, true) != core.CleanString(cur.Name, true) {
		return Course{}, core.NewValidationError(ErrSectionRename,
			core.FieldError{Field: "name", Error: ErrSectionRename.Error()})
	}

	cur.Code = uc.Code
	cur.Name = uc.Name
	cur.Schedule = uc.Schedule
	co, err := svc.repo.UpdateCourse(accountID, oldCode, cur)
	if err != nil {
		return Course{}, mapUniquenessErr(err)
	}
	return co, nil
}

// AssignRoster replaces the course roster wholesale.
func (svc *Service) AssignRoster(accountID int, code string, roster core.StringSet) (Course, error) {
	cur, err := svc.repo.GetCourse(accountID, code)
	if err != nil {
		return Course{}, err
	}
	if cur.Closed {
		return Course{}, core.NewValidationError(ErrClosed)
	}

	co, err := svc.repo.AssignRoster(accountID, code, cleanRoster(roster))
	if err != nil {
		if err == ErrRosterConflict {
			return Course{}, core.NewValidationError(err, core.FieldError{Field: "roster", Error: err.Error()})
		}
		return Course{}, err
	}
	return co, nil
}

// Close flips the course into its terminal state. No un-close exists.
func (svc *Service) Close(accountID int, code string) (Course, error) {
	cur, err := svc.repo.GetCourse(accountID, code)
	if err != nil {
		return Course{}, err
	}
	if cur.Closed {
		return Course{}, core.NewValidationError(ErrAlreadyClosed)
	}
	return svc.repo.CloseCourse(accountID, code)
}

func (svc *Service) SetMinAttendance(accountID int, code string, pct float64) (Course, error) {
	if pct < MinAttendanceFloor || pct > MinAttendanceCeil {
		return Course{}, core.NewValidationError(nil, core.FieldError{
			Field: "min_attendance",
			Error: fmt.Sprintf("minimum attendance must be between %.0f%% and %.0f%%", MinAttendanceFloor, MinAttendanceCeil),
		})
	}
	return svc.repo.SetMinAttendance(accountID, code, pct)
}

func (svc *Service) Delete(accountID int, code string) error {
	return svc.repo.DeleteCourse(accountID, code)
}

// cleanRoster normalizes every RUT in a caller-supplied roster.
func cleanRoster(roster core.StringSet) core.StringSet {
	res := make(core.StringSet, len(roster))
	for raw := range roster {
		res[rut.Clean(raw)] = true
	}
	return res
}
