package account_test

import (
	"path/filepath"
	"testing"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/account"
	"github.com/mroldanv/presente/core/student"
	"github.com/mroldanv/presente/storage/jsondb"
)

func setup(t *testing.T) (*account.Service, *student.Service) {
	dir := t.TempDir()
	core.Conf.AccountsFile = filepath.Join(dir, "usuarios.json")
	core.Conf.DataFile = filepath.Join(dir, "datos.json")

	db, err := jsondb.Open(core.Conf)
	if err != nil {
		t.Fatalf("jsondb.Open() failed: %v", err)
	}
	return account.NewService(jsondb.NewAccountRepository(db)),
		student.NewService(jsondb.NewStudentRepository(db))
}

func register(t *testing.T, svc *account.Service, rut, pwd string) account.Account {
	t.Helper()
	acct, err := svc.Register(account.NewAccount{RUT: rut, Password: pwd})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", rut, err)
	}
	return acct
}

func TestService_Register(t *testing.T) {
	svc, _ := setup(t)

	tests := []struct {
		name    string
		rut     string
		pwd     string
		wantErr bool
	}{
		{name: "ok", rut: "20.123.456-5", pwd: "secret1"},
		{name: "ok with k", rut: "9876543-k", pwd: "secret1"},
		{name: "repeated digit body", rut: "11111111-1", pwd: "secret1", wantErr: true},
		{name: "internal space", rut: "20.123 456-5", pwd: "secret1", wantErr: true},
		{name: "too short", rut: "123456-5", pwd: "secret1", wantErr: true},
		{name: "missing password", rut: "12345678-5", wantErr: true},
		{name: "short password", rut: "12345678-5", pwd: "abc", wantErr: true},
		{name: "password with space", rut: "12345678-5", pwd: "abc def", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := svc.Register(account.NewAccount{RUT: tt.rut, Password: tt.pwd})
			if tt.wantErr {
				if err == nil {
					t.Errorf("Register() expected error, got account %+v", acct)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() failed: %v", err)
			}
			if acct.ID == 0 {
				t.Error("Register() did not assign an id")
			}
			if acct.PasswordHash == "" || acct.Salt == "" {
				t.Error("Register() did not hash the password")
			}
		})
	}
}

func TestService_Register_ids(t *testing.T) {
	svc, _ := setup(t)

	a1 := register(t, svc, "20123456-5", "secret1")
	a2 := register(t, svc, "9876543-K", "secret1")
	if a1.ID != 1 || a2.ID != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", a1.ID, a2.ID)
	}
}

func TestService_Register_namespaceExclusion(t *testing.T) {
	svc, stSvc := setup(t)

	register(t, svc, "20123456-5", "secret1")

	// same RUT again, separators notwithstanding
	if _, err := svc.Register(account.NewAccount{RUT: "20.123.456-5", Password: "secret1"}); err == nil {
		t.Error("Register() accepted a duplicate RUT")
	}

	// a student RUT cannot become a login
	if _, err := stSvc.Add(1, student.NewStudent{RUT: "19876543-K", Name: "Ana Soto"}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if _, err := svc.Register(account.NewAccount{RUT: "19876543-K", Password: "secret1"}); err == nil {
		t.Error("Register() accepted a RUT already used by a student")
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := setup(t)

	register(t, svc, "20123456-5", "secret1")

	if _, err := svc.Authenticate("20.123.456-5", "secret1"); err != nil {
		t.Errorf("Authenticate() failed: %v", err)
	}
	if _, err := svc.Authenticate("20123456-5", "wrong"); err != account.ErrAuthenticationFailed {
		t.Errorf("Authenticate() error = %v, want ErrAuthenticationFailed", err)
	}
	if _, err := svc.Authenticate("9876543-K", "secret1"); err != account.ErrAuthenticationFailed {
		t.Errorf("Authenticate() unknown RUT error = %v, want ErrAuthenticationFailed", err)
	}
}

func TestService_UpdateCredentials(t *testing.T) {
	svc, _ := setup(t)

	acct := register(t, svc, "20123456-5", "secret1")

	// the current password is re-proven here, not trusted from the caller
	_, err := svc.UpdateCredentials(acct.ID, account.UpdateCredentials{
		CurrentPassword: "wrong", NewRUT: "20123456-5", NewPassword: "secret2",
	})
	if err != account.ErrAuthenticationFailed {
		t.Errorf("UpdateCredentials() error = %v, want ErrAuthenticationFailed", err)
	}

	// resubmitting the same credentials is a no-op and says so
	_, err = svc.UpdateCredentials(acct.ID, account.UpdateCredentials{
		CurrentPassword: "secret1", NewRUT: "20.123.456-5", NewPassword: "secret1",
	})
	if vErr, ok := err.(*core.ValidationError); !ok || vErr.Err != account.ErrNoChanges {
		t.Errorf("UpdateCredentials() error = %v, want ErrNoChanges", err)
	}

	// password change: old stops working, new works, salt rotates
	updated, err := svc.UpdateCredentials(acct.ID, account.UpdateCredentials{
		CurrentPassword: "secret1", NewRUT: "20123456-5", NewPassword: "secret2",
	})
	if err != nil {
		t.Fatalf("UpdateCredentials() failed: %v", err)
	}
	if updated.Salt == acct.Salt || updated.PasswordHash == acct.PasswordHash {
		t.Error("UpdateCredentials() kept the old salt or hash")
	}
	if _, err = svc.Authenticate("20123456-5", "secret1"); err != account.ErrAuthenticationFailed {
		t.Error("old password still authenticates")
	}
	if _, err = svc.Authenticate("20123456-5", "secret2"); err != nil {
		t.Errorf("new password does not authenticate: %v", err)
	}

	// RUT change re-keys the login while keeping the id
	moved, err := svc.UpdateCredentials(acct.ID, account.UpdateCredentials{
		CurrentPassword: "secret2", NewRUT: "9876543-K", NewPassword: "secret2",
	})
	if err != nil {
		t.Fatalf("UpdateCredentials() failed: %v", err)
	}
	if moved.ID != acct.ID {
		t.Errorf("id changed on RUT update: %d != %d", moved.ID, acct.ID)
	}
	if moved.Salt != updated.Salt {
		t.Error("unchanged password was re-hashed")
	}
	if _, err = svc.GetByRUT("20123456-5"); err != account.ErrNotFound {
		t.Errorf("GetByRUT(old) error = %v, want ErrNotFound", err)
	}
	if _, err = svc.GetByRUT("9876543-K"); err != nil {
		t.Errorf("GetByRUT(new) failed: %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc, stSvc := setup(t)

	acct := register(t, svc, "20123456-5", "secret1")
	if _, err := stSvc.Add(acct.ID, student.NewStudent{RUT: "19876543-K", Name: "Ana Soto"}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if err := svc.Delete(acct.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := svc.GetByID(acct.ID); err != account.ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	// the whole partition goes with the account
	students, err := stSvc.QueryAll(acct.ID)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(students) != 0 {
		t.Errorf("partition not deleted: %d students left", len(students))
	}
}
