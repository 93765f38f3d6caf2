package course_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/course"
	"github.com/mroldanv/presente/core/session"
	"github.com/mroldanv/presente/core/student"
	"github.com/mroldanv/presente/storage/jsondb"
)

type testEnv struct {
	students *student.Service
	courses  *course.Service
	sessions *session.Service
}

func setup(t *testing.T) *testEnv {
	dir := t.TempDir()
	core.Conf.AccountsFile = filepath.Join(dir, "usuarios.json")
	core.Conf.DataFile = filepath.Join(dir, "datos.json")

	db, err := jsondb.Open(core.Conf)
	if err != nil {
		t.Fatalf("jsondb.Open() failed: %v", err)
	}
	courseRepo := jsondb.NewCourseRepository(db)
	studentRepo := jsondb.NewStudentRepository(db)
	return &testEnv{
		students: student.NewService(studentRepo),
		courses:  course.NewService(courseRepo),
		sessions: session.NewService(jsondb.NewSessionRepository(db), courseRepo, studentRepo),
	}
}

func (env *testEnv) createCourse(t *testing.T, accountID int, nc course.NewCourse) []course.Course {
	t.Helper()
	courses, err := env.courses.Create(accountID, nc)
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", nc.Code, err)
	}
	return courses
}

func TestService_Create(t *testing.T) {
	env := setup(t)

	courses := env.createCourse(t, 1, course.NewCourse{Code: "MAT1", Name: "Matemáticas", Schedule: "Lu 10:00"})
	if len(courses) != 1 {
		t.Fatalf("Create() returned %d courses, want 1", len(courses))
	}
	co := courses[0]
	if co.Code != "MAT1" || co.Name != "Matemáticas" || co.Closed {
		t.Errorf("Create() = %+v", co)
	}
	if co.MinAttendance != course.DefaultMinAttendance {
		t.Errorf("MinAttendance = %v, want default %v", co.MinAttendance, course.DefaultMinAttendance)
	}

	if _, err := env.courses.Create(1, course.NewCourse{Code: "MAT1", Name: "Otro"}); err == nil {
		t.Error("Create() accepted a duplicate code")
	}
	if _, err := env.courses.Create(1, course.NewCourse{Code: "FIS1", Name: " matemáticas "}); err == nil {
		t.Error("Create() accepted a duplicate name")
	}
}

func TestService_Create_sections(t *testing.T) {
	env := setup(t)

	courses := env.createCourse(t, 1, course.NewCourse{
		Code:     "MAT1",
		Name:     "Matemáticas",
		Sections: 3,
		Rosters: map[int]core.StringSet{
			1: core.NewStringSet("19876543K"),
			2: core.NewStringSet("187654321"),
		},
	})
	if len(courses) != 3 {
		t.Fatalf("Create() returned %d courses, want 3", len(courses))
	}
	if courses[0].Code != "MAT1-1" || courses[0].Name != "Matemáticas - Sección 1" {
		t.Errorf("section 1 = %q %q", courses[0].Code, courses[0].Name)
	}
	if !courses[0].IsSection() || courses[0].BaseName() != "Matemáticas" {
		t.Error("section 1 not recognized as a section")
	}
	if !courses[0].Roster.Has("19876543K") || len(courses[2].Roster) != 0 {
		t.Error("rosters not distributed to sections")
	}

	// a family with the same base name cannot be created twice
	if _, err := env.courses.Create(1, course.NewCourse{Code: "MAT9", Name: "matemáticas", Sections: 2}); err == nil {
		t.Error("Create() accepted a duplicate section base name")
	}
}

func TestService_Create_sectionRosterOverlap(t *testing.T) {
	env := setup(t)

	_, err := env.courses.Create(1, course.NewCourse{
		Code:     "MAT1",
		Name:     "Matemáticas",
		Sections: 2,
		Rosters: map[int]core.StringSet{
			1: core.NewStringSet("19876543K", "187654321"),
			2: core.NewStringSet("19876543K"),
		},
	})
	if err == nil {
		t.Fatal("Create() accepted overlapping section rosters")
	}
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("Create() error type = %T, want *core.ValidationError", err)
	}
}

func TestService_Create_globalCodeUniqueness(t *testing.T) {
	env := setup(t)

	env.createCourse(t, 1, course.NewCourse{Code: "MAT1", Name: "Matemáticas", Sections: 2})

	// the base code is reserved across every account
	if _, err := env.courses.Create(2, course.NewCourse{Code: "MAT1", Name: "Cálculo"}); err == nil {
		t.Error("Create() accepted a base code owned by another account")
	}
	if _, err := env.courses.Create(2, course.NewCourse{Code: "FIS1", Name: "Física"}); err != nil {
		t.Errorf("Create() with a fresh code failed: %v", err)
	}
}

func TestService_Update(t *testing.T) {
	env := setup(t)

	env.createCourse(t, 1, course.NewCourse{Code: "MAT1", Name: "Matemáticas"})

	s, err := env.sessions.Start(1, "MAT1")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	co, err := env.courses.Update(1, "MAT1", course.UpdateCourse{Code: "MAT2", Name: "Cálculo", Schedule: "Ma 08:00"})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if co.Code != "MAT2" || co.Name != "Cálculo" {
		t.Errorf("Update() = %+v", co)
	}
	if _, err = env.courses.Get(1, "MAT1"); err != course.ErrNotFound {
		t.Errorf("Get(old code) error = %v, want ErrNotFound", err)
	}

	// sessions follow the renamed code
	got, err := env.sessions.Get(1, s.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.CourseCode != "MAT2" {
		t.Errorf("session course code = %q, want MAT2", got.CourseCode)
	}
}

func TestService_Update_sectionRename(t *testing.T) {
	env := setup(t)

	env.createCourse(t, 1, course.NewCourse{Code: "MAT1", Name: "Matemáticas", Sections: 2})

	// schedule and code may change, the derived name may not
	if _, err := env.courses.Update(1, "MAT1-1", course.UpdateCourse{
		Code: "MAT1-1", Name: "Matemáticas - Sección 1", Schedule: "Mi 12:00",
	}); err != nil {
		t.Errorf("Update() keeping the name failed: %v", err)
	}
	if _, err := env.courses.Update(1, "MAT1-1", course.UpdateCourse{
		Code: "MAT1-1", Name: "Otra cosa",
	}); err == nil {
		t.Error("Update() renamed a section directly")
	}
}

func TestService_Close(t *testing.T) {
	env := setup(t)

	env.createCourse(t, 1, course.NewCourse{Code: "MAT1", Name: "Matemáticas"})
	s, err := env.sessions.Start(1, "MAT1")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	co, err := env.courses.Close(1, "MAT1")
	if err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !co.Closed || !strings.HasSuffix(co.Name, course.ClosedMarker) {
		t.Errorf("Close() = %+v", co)
	}
	if _, err = env.courses.Close(1, "MAT1"); err == nil {
		t.Error("Close() closed twice")
	}

	// everything mutating fails uniformly on a closed course
	if _, err = env.courses.Update(1, "MAT1", course.UpdateCourse{Code: "MAT1", Name: co.Name}); err == nil {
		t.Error("Update() modified a closed course")
	}
	if _, err = env.courses.AssignRoster(1, "MAT1", core.NewStringSet("19876543K")); err == nil {
		t.Error("AssignRoster() modified a closed course")
	}
	if _, err = env.sessions.Start(1, "MAT1"); err == nil {
		t.Error("Start() opened a session on a closed course")
	}
	if _, err = env.sessions.Edit(1, s.ID, session.EditSession{}); err == nil {
		t.Error("Edit() modified a session of a closed course")
	}
	if err = env.sessions.Delete(1, s.ID); err == nil {
		t.Error("Delete() removed a session of a closed course")
	}

	// the attendance threshold remains adjustable after closing
	if _, err = env.courses.SetMinAttendance(1, "MAT1", 75); err != nil {
		t.Errorf("SetMinAttendance() on a closed course failed: %v", err)
	}
}

func TestService_AssignRoster_siblingConflict(t *testing.T) {
	env := setup(t)

	env.createCourse(t, 1, course.NewCourse{
		Code:     "MAT1",
		Name:     "Matemáticas",
		Sections: 2,
		Rosters:  map[int]core.StringSet{1: core.NewStringSet("19876543K")},
	})

	if _, err := env.courses.AssignRoster(1, "MAT1-2", core.NewStringSet("19876543-K")); err == nil {
		t.Error("AssignRoster() accepted a RUT held by a sibling section")
	}
	if _, err := env.courses.AssignRoster(1, "MAT1-2", core.NewStringSet("187654321")); err != nil {
		t.Errorf("AssignRoster() failed: %v", err)
	}
}

func TestService_SetMinAttendance(t *testing.T) {
	env := setup(t)

	env.createCourse(t, 1, course.NewCourse{Code: "MAT1", Name: "Matemáticas"})

	for _, pct := range []float64{59.9, 100.1, -1, 0} {
		if _, err := env.courses.SetMinAttendance(1, "MAT1", pct); err == nil {
			t.Errorf("SetMinAttendance(%v) accepted an out-of-range value", pct)
		}
	}
	for _, pct := range []float64{60, 85.5, 100} {
		co, err := env.courses.SetMinAttendance(1, "MAT1", pct)
		if err != nil {
			t.Fatalf("SetMinAttendance(%v) failed: %v", pct, err)
		}
		if co.MinAttendance != pct {
			t.Errorf("MinAttendance = %v, want %v", co.MinAttendance, pct)
		}
	}
}

func TestService_Delete_cascadesSessions(t *testing.T) {
	env := setup(t)

	env.createCourse(t, 1, course.NewCourse{Code: "MAT1", Name: "Matemáticas"})
	env.createCourse(t, 1, course.NewCourse{Code: "FIS1", Name: "Física"})

	s1, err := env.sessions.Start(1, "MAT1")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	s2, err := env.sessions.Start(1, "FIS1")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := env.courses.Delete(1, "MAT1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = env.sessions.Get(1, s1.ID); err != session.ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err = env.sessions.Get(1, s2.ID); err != nil {
		t.Errorf("unrelated session was deleted: %v", err)
	}
}
