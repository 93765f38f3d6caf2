package student_test

import (
	"path/filepath"
	"testing"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/account"
	"github.com/mroldanv/presente/core/course"
	"github.com/mroldanv/presente/core/session"
	"github.com/mroldanv/presente/core/student"
	"github.com/mroldanv/presente/storage/jsondb"
)

type testEnv struct {
	accounts *account.Service
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
		accounts: account.NewService(jsondb.NewAccountRepository(db)),
		students: student.NewService(studentRepo),
		courses:  course.NewService(courseRepo),
		sessions: session.NewService(jsondb.NewSessionRepository(db), courseRepo, studentRepo),
	}
}

func (env *testEnv) addStudent(t *testing.T, accountID int, rut, name string) student.Student {
	t.Helper()
	st, err := env.students.Add(accountID, student.NewStudent{RUT: rut, Name: name})
	if err != nil {
		t.Fatalf("Add(%s) failed: %v", rut, err)
	}
	return st
}

func TestService_Add(t *testing.T) {
	env := setup(t)

	st := env.addStudent(t, 1, "19.876.543-K", "Ana Soto")
	if st.RUT != "19876543K" {
		t.Errorf("Add() stored RUT %q, want normalized", st.RUT)
	}

	tests := []struct {
		name    string
		rut     string
		stName  string
	}{
		{name: "duplicate RUT", rut: "19876543-K", stName: "Benito Rojas"},
		{name: "duplicate name", rut: "18765432-1", stName: " ANA SOTO "},
		{name: "invalid RUT", rut: "11111111-1", stName: "Benito Rojas"},
		{name: "missing name", rut: "18765432-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.students.Add(1, student.NewStudent{RUT: tt.rut, Name: tt.stName}); err == nil {
				t.Error("Add() expected error")
			}
		})
	}
}

func TestService_Add_accountRUT(t *testing.T) {
	env := setup(t)

	acct, err := env.accounts.Register(account.NewAccount{RUT: "20123456-5", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if _, err := env.students.Add(acct.ID, student.NewStudent{RUT: "20.123.456-5", Name: "Ana Soto"}); err == nil {
		t.Error("Add() accepted a RUT already registered for login")
	}
}

func TestService_partitionIsolation(t *testing.T) {
	env := setup(t)

	env.addStudent(t, 1, "19876543-K", "Ana Soto")

	// another account may use the same student RUT
	if _, err := env.students.Add(2, student.NewStudent{RUT: "19876543-K", Name: "Ana Soto"}); err != nil {
		t.Errorf("Add() in another partition failed: %v", err)
	}
	if _, err := env.students.Get(3, "19876543-K"); err != student.ErrNotFound {
		t.Errorf("Get() from a foreign partition error = %v, want ErrNotFound", err)
	}
}

func TestService_Update_renameCascades(t *testing.T) {
	env := setup(t)

	env.addStudent(t, 1, "19876543-K", "Ana Soto")

	if _, err := env.courses.Create(1, course.NewCourse{Code: "MAT1", Name: "Matemáticas"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := env.courses.AssignRoster(1, "MAT1", core.NewStringSet("19876543K")); err != nil {
		t.Fatalf("AssignRoster() failed: %v", err)
	}
	s, err := env.sessions.Start(1, "MAT1")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err = env.sessions.Edit(1, s.ID, session.EditSession{Present: core.NewStringSet("19876543K")}); err != nil {
		t.Fatalf("Edit() failed: %v", err)
	}

	// the rename substitutes the RUT in rosters and attendance sets
	if _, err = env.students.Update(1, "19876543-K", student.UpdateStudent{RUT: "18.765.432-1", Name: "Ana Soto"}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	co, err := env.courses.Get(1, "MAT1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !co.Roster.Has("187654321") || co.Roster.Has("19876543K") {
		t.Errorf("roster not rewritten: %v", co.Roster.Sorted())
	}
	got, err := env.sessions.Get(1, s.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !got.Present.Has("187654321") || got.Present.Has("19876543K") {
		t.Errorf("present set not rewritten: %v", got.Present.Sorted())
	}

	// attendance survives the rename
	pct, err := env.sessions.Percentage(1, "MAT1", "18765432-1")
	if err != nil {
		t.Fatalf("Percentage() failed: %v", err)
	}
	if pct != 100 {
		t.Errorf("Percentage() after rename = %v, want 100", pct)
	}
}

func TestService_Delete_purges(t *testing.T) {
	env := setup(t)

	env.addStudent(t, 1, "19876543-K", "Ana Soto")
	env.addStudent(t, 1, "18765432-1", "Benito Rojas")

	if _, err := env.courses.Create(1, course.NewCourse{Code: "MAT1", Name: "Matemáticas"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := env.courses.AssignRoster(1, "MAT1", core.NewStringSet("19876543K", "187654321")); err != nil {
		t.Fatalf("AssignRoster() failed: %v", err)
	}
	s, err := env.sessions.Start(1, "MAT1")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err = env.sessions.Edit(1, s.ID, session.EditSession{
		Present:   core.NewStringSet("19876543K"),
		Justified: core.NewStringSet("187654321"),
	}); err != nil {
		t.Fatalf("Edit() failed: %v", err)
	}

	if err := env.students.Delete(1, "19876543-K"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	co, _ := env.courses.Get(1, "MAT1")
	if co.Roster.Has("19876543K") {
		t.Error("deleted student still on the roster")
	}
	got, _ := env.sessions.Get(1, s.ID)
	if got.Present.Has("19876543K") {
		t.Error("deleted student still marked present")
	}
	if !got.Justified.Has("187654321") {
		t.Error("unrelated justified mark was dropped")
	}
	if err := env.students.Delete(1, "19876543-K"); err != student.ErrNotFound {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestService_QueryAll_sorted(t *testing.T) {
	env := setup(t)

	env.addStudent(t, 1, "18765432-1", "Benito Rojas")
	env.addStudent(t, 1, "19876543-K", "Ana Soto")

	students, err := env.students.QueryAll(1)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(students) != 2 || students[0].Name != "Ana Soto" {
		t.Errorf("QueryAll() = %+v, want sorted by name", students)
	}
}
