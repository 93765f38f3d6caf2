package session

import (
	"errors"
	"sort"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/course"
	"github.com/mroldanv/presente/core/rut"
	"github.com/mroldanv/presente/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")
	ErrOverlap  = errors.New("a student cannot be both present and justified in the same session")
)

type (
	Repository interface {
		// CreateSession assigns the next per-partition session id from the
		// persisted counter (ids are never reused) and persists the snapshot.
		CreateSession(accountID int, s Session) (Session, error)
		GetSession(accountID, id int) (Session, error)
		QuerySessionsByCourse(accountID int, code string) ([]Session, error)
		UpdateSession(accountID int, s Session) (Session, error)
		DeleteSession(accountID, id int) error
	}

	Service struct {
		repo     Repository
		courses  course.Repository
		students student.Repository
	}
)

func NewService(repo Repository, courses course.Repository, students student.Repository) *Service {
	return &Service{repo: repo, courses: courses, students: students}
}

// Start opens a new session for an open course, timestamped now, with empty
// attendance sets.
func (svc *Service) Start(accountID int, courseCode string) (Session, error) {
	co, err := svc.courses.GetCourse(accountID, courseCode)
	if err != nil {
		return Session{}, err
	}
	if co.Closed {
		return Session{}, core.NewValidationError(course.ErrClosed)
	}

	s := Session{
		CourseCode: co.Code,
		Date:       NowFunc().UTC(),
		Present:    make(core.StringSet),
		Justified:  make(core.StringSet),
	}
	return svc.repo.CreateSession(accountID, s)
}

func (svc *Service) Get(accountID, id int) (Session, error) {
	return svc.repo.GetSession(accountID, id)
}

// ByCourse lists a course's sessions ordered by id.
func (svc *Service) ByCourse(accountID int, courseCode string) ([]Session, error) {
	if _, err := svc.courses.GetCourse(accountID, courseCode); err != nil {
		return nil, err
	}
	sessions, err := svc.repo.QuerySessionsByCourse(accountID, courseCode)
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

// Edit applies a partial edit to a session of an open course. Supplied
// attendance sets are restricted to current students on the current course
// roster; unknown or unenrolled RUTs are dropped silently, never errored.
// A student appearing in both resulting sets is rejected.
func (svc *Service) Edit(accountID, id int, es EditSession) (Session, error) {
	s, err := svc.repo.GetSession(accountID, id)
	if err != nil {
		return Session{}, err
	}
	co, err := svc.courses.GetCourse(accountID, s.CourseCode)
	if err != nil {
		return Session{}, err
	}
	if co.Closed {
		return Session{}, core.NewValidationError(course.ErrClosed)
	}

	ruts, err := svc.students.StudentRUTs(accountID)
	if err != nil {
		return Session{}, err
	}
	enrolled := co.Roster.Intersect(ruts)

	if es.Date != nil {
		s.Date = *es.Date
	}
	if es.Present != nil {
		s.Present = enrolled.Intersect(cleanSet(es.Present))
	}
	if es.Justified != nil {
		s.Justified = enrolled.Intersect(cleanSet(es.Justified))
	}
	if s.Present.Intersects(s.Justified) {
		return Session{}, core.NewValidationError(ErrOverlap)
	}

	return svc.repo.UpdateSession(accountID, s)
}

// Delete removes a session of an open course. Its id is never reallocated.
func (svc *Service) Delete(accountID, id int) error {
	s, err := svc.repo.GetSession(accountID, id)
	if err != nil {
		return err
	}
	co, err := svc.courses.GetCourse(accountID, s.CourseCode)
	if err != nil {
		return err
	}
	if co.Closed {
		return core.NewValidationError(course.ErrClosed)
	}
	return svc.repo.DeleteSession(accountID, id)
}

// Percentage computes a student's attendance for a course, in [0, 100].
// An unknown course or a student off the roster reports 0. A roster member of
// a course that never held a session reports 100 (vacuously full attendance;
// deliberate policy). Otherwise: 100 * attended / held, where a justified
// absence counts as attended.
func (svc *Service) Percentage(accountID int, courseCode, rawRUT string) (float64, error) {
	co, err := svc.courses.GetCourse(accountID, courseCode)
	if err != nil {
		if err == course.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}

	tok := rut.Clean(rawRUT)
	if !co.Roster.Has(tok) {
		return 0, nil
	}

	sessions, err := svc.repo.QuerySessionsByCourse(accountID, courseCode)
	if err != nil {
		return 0, err
	}
	if len(sessions) == 0 {
		return 100, nil
	}

	var attended int
	for _, s := range sessions {
		if s.Attended(tok) {
			attended++
		}
	}
	return 100 * float64(attended) / float64(len(sessions)), nil
}

// Report computes the attendance of every roster member of a course, flagged
// against the course's minimum attendance, ordered by student name.
func (svc *Service) Report(accountID int, courseCode string) ([]StudentAttendance, error) {
	co, err := svc.courses.GetCourse(accountID, courseCode)
	if err != nil {
		return nil, err
	}

	rows := make([]StudentAttendance, 0, len(co.Roster))
	for _, tok := range co.Roster.Sorted() {
		pct, err := svc.Percentage(accountID, courseCode, tok)
		if err != nil {
			return nil, err
		}
		row := StudentAttendance{RUT: tok, Percentage: pct, MeetsMinimum: pct >= co.MinAttendance}
		if st, err := svc.students.GetStudent(accountID, tok); err == nil {
			row.Name = st.Name
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].RUT < rows[j].RUT
	})
	return rows, nil
}

// cleanSet normalizes every RUT in a caller-supplied set.
func cleanSet(set core.StringSet) core.StringSet {
	res := make(core.StringSet, len(set))
	for raw := range set {
		res[rut.Clean(raw)] = true
	}
	return res
}
