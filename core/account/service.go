package account

import (
	"errors"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/rut"
)

var (
	// errors
	ErrNotFound             = errors.New("account not found")
	ErrRUTExists            = errors.New("this identity number is already registered for login")
	ErrRUTIsStudent         = errors.New("this identity number belongs to a student and cannot be used for login")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNoChanges            = errors.New("there are no changes to save")
)

type (
	Repository interface {
		// CreateAccount assigns the next numeric id, initializes an empty data
		// partition and persists the accounts snapshot. It fails with
		// ErrRUTExists or ErrRUTIsStudent when the RUT is taken in either
		// namespace.
		CreateAccount(acct Account) (Account, error)
		GetAccountByID(id int) (Account, error)
		GetAccountByRUT(rut string) (Account, error)
		// UpdateAccount re-keys the account when its RUT changed, re-checking
		// both namespaces for the new key.
		UpdateAccount(oldRUT string, acct Account) (Account, error)
		// DeleteAccount removes the account and its whole data partition.
		DeleteAccount(id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// mapUniquenessErr converts namespace-exclusion errors into field-level
// validation errors for the given field.
func mapUniquenessErr(err error, field string) error {
	switch err {
	case ErrRUTExists, ErrRUTIsStudent:
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	default:
		return err
	}
}

// Register creates a new Account with an empty data partition and returns it.
func (svc *Service) Register(na NewAccount) (Account, error) {
	if err := na.Validate(); err != nil {
		return Account{}, err
	}

	acct := Account{RUT: rut.Clean(na.RUT)}
	if err := acct.SetPassword(na.Password); err != nil {
		return Account{}, err
	}

	acct, err := svc.repo.CreateAccount(acct)
	if err != nil {
		return Account{}, mapUniquenessErr(err, "rut")
	}
	return acct, nil
}

// Authenticate returns the account matching the credentials. Unknown RUT and
// wrong password are indistinguishable by design.
func (svc *Service) Authenticate(rawRUT, pwd string) (Account, error) {
	acct, err := svc.repo.GetAccountByRUT(rut.Clean(rawRUT))
	if err != nil {
		if err == ErrNotFound {
			return Account{}, ErrAuthenticationFailed
		}
		return Account{}, err
	}
	if !acct.CheckPassword(pwd) {
		return Account{}, ErrAuthenticationFailed
	}
	return acct, nil
}

func (svc *Service) GetByID(id int) (Account, error) {
	return svc.repo.GetAccountByID(id)
}

func (svc *Service) GetByRUT(rawRUT string) (Account, error) {
	return svc.repo.GetAccountByRUT(rut.Clean(rawRUT))
}

// UpdateCredentials changes the account's RUT and/or password. The current
// password is re-verified here rather than trusted from the caller. An
// unchanged password (detected by recomputing with the stored salt) keeps the
// stored hash and salt untouched.
func (svc *Service) UpdateCredentials(id int, uc UpdateCredentials) (Account, error) {
	acct, err := svc.repo.GetAccountByID(id)
	if err != nil {
		return Account{}, err
	}
	if !acct.CheckPassword(uc.CurrentPassword) {
		return Account{}, ErrAuthenticationFailed
	}

	if err := uc.Validate(); err != nil {
		return Account{}, err
	}

	newRUT := rut.Clean(uc.NewRUT)
	rutChanged := newRUT != acct.RUT
	pwdChanged := !acct.CheckPassword(uc.NewPassword)
	if !rutChanged && !pwdChanged {
		return Account{}, core.NewValidationError(ErrNoChanges)
	}

	oldRUT := acct.RUT
	acct.RUT = newRUT
	if pwdChanged {
		if err := acct.SetPassword(uc.NewPassword); err != nil {
			return Account{}, err
		}
	}

	acct, err = svc.repo.UpdateAccount(oldRUT, acct)
	if err != nil {
		return Account{}, mapUniquenessErr(err, "new_rut")
	}
	return acct, nil
}

// Delete removes the account and cascades to all owned data. Irreversible.
func (svc *Service) Delete(id int) error {
	return svc.repo.DeleteAccount(id)
}
