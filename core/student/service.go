package student

import (
	"errors"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/rut"
)

var (
	// errors
	ErrNotFound     = errors.New("student not found")
	ErrRUTExists    = errors.New("a student with this identity number already exists")
	ErrRUTIsAccount = errors.New("this identity number is registered for login and cannot be used for a student")
	ErrNameExists   = errors.New("a student with this name already exists")
)

type (
	Repository interface {
		// CreateStudent fails with ErrRUTExists, ErrRUTIsAccount or
		// ErrNameExists on a uniqueness violation. Name comparison is
		// case/whitespace-insensitive.
		CreateStudent(accountID int, st Student) (Student, error)
		GetStudent(accountID int, rut string) (Student, error)
		QueryStudents(accountID int) ([]Student, error)
		// UpdateStudent re-keys the student when its RUT changed, cascading the
		// substitution into every session's present/justified sets and every
		// course roster of the partition.
		UpdateStudent(accountID int, oldRUT string, st Student) (Student, error)
		// DeleteStudent purges the RUT from every session's sets and every
		// course roster of the partition.
		DeleteStudent(accountID int, rut string) error
		// StudentRUTs returns the set of all student RUTs in the partition.
		StudentRUTs(accountID int) (core.StringSet, error)
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
	case ErrRUTExists, ErrRUTIsAccount:
		return core.NewValidationError(err, core.FieldError{Field: "rut", Error: err.Error()})
	case ErrNameExists:
		return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
	default:
		return err
	}
}

func (svc *Service) Add(accountID int, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}

	st, err := svc.repo.CreateStudent(accountID, Student{RUT: rut.Clean(ns.RUT), Name: ns.Name})
	if err != nil {
		return Student{}, mapUniquenessErr(err)
	}
	return st, nil
}

func (svc *Service) Get(accountID int, rawRUT string) (Student, error) {
	return svc.repo.GetStudent(accountID, rut.Clean(rawRUT))
}

func (svc *Service) QueryAll(accountID int) ([]Student, error) {
	return svc.repo.QueryStudents(accountID)
}

func (svc *Service) Update(accountID int, oldRUT string, us UpdateStudent) (Student, error) {
	if err := us.Validate(); err != nil {
		return Student{}, err
	}

	st, err := svc.repo.UpdateStudent(accountID, rut.Clean(oldRUT), Student{RUT: rut.Clean(us.RUT), Name: us.Name})
	if err != nil {
		return Student{}, mapUniquenessErr(err)
	}
	return st, nil
}

func (svc *Service) Delete(accountID int, rawRUT string) error {
	return svc.repo.DeleteStudent(accountID, rut.Clean(rawRUT))
}
