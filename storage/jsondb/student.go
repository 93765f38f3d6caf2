package jsondb

import (
	"sort"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(accountID int, st student.Student) (student.Student, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	if _, ok := p.students[st.RUT]; ok {
		return student.Student{}, student.ErrRUTExists
	}
	if _, ok := db.accounts[st.RUT]; ok {
		return student.Student{}, student.ErrRUTIsAccount
	}
	if p.studentNameTaken(st.Name, "") {
		return student.Student{}, student.ErrNameExists
	}

	p.students[st.RUT] = st
	if err := db.saveData(); err != nil {
		return student.Student{}, err
	}
	return st, nil
}

func (repo *studentRepository) GetStudent(accountID int, rut string) (student.Student, error) {
	db := repo.db
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	p, ok := db.partitions[accountID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	st, ok := p.students[rut]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func (repo *studentRepository) QueryStudents(accountID int) ([]student.Student, error) {
	db := repo.db
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	p, ok := db.partitions[accountID]
	if !ok {
		return []student.Student{}, nil
	}
	students := make([]student.Student, 0, len(p.students))
	for _, st := range p.students {
		students = append(students, st)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].RUT < students[j].RUT
	})
	return students, nil
}

func (repo *studentRepository) UpdateStudent(accountID int, oldRUT string, st student.Student) (student.Student, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	if _, ok := p.students[oldRUT]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	if st.RUT != oldRUT {
		if _, ok := p.students[st.RUT]; ok {
			return student.Student{}, student.ErrRUTExists
		}
		if _, ok := db.accounts[st.RUT]; ok {
			return student.Student{}, student.ErrRUTIsAccount
		}
	}
	if p.studentNameTaken(st.Name, oldRUT) {
		return student.Student{}, student.ErrNameExists
	}

	if st.RUT != oldRUT {
		delete(p.students, oldRUT)
		p.substituteRUT(oldRUT, st.RUT)
	}
	p.students[st.RUT] = st

	if err := db.saveData(); err != nil {
		return student.Student{}, err
	}
	return st, nil
}

func (repo *studentRepository) DeleteStudent(accountID int, rut string) error {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	if _, ok := p.students[rut]; !ok {
		return student.ErrNotFound
	}

	delete(p.students, rut)
	p.purgeRUT(rut)
	return db.saveData()
}

func (repo *studentRepository) StudentRUTs(accountID int) (core.StringSet, error) {
	db := repo.db
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	p, ok := db.partitions[accountID]
	if !ok {
		return make(core.StringSet), nil
	}
	ruts := make(core.StringSet, len(p.students))
	for rut := range p.students {
		ruts.Add(rut)
	}
	return ruts, nil
}

// studentNameTaken reports whether another student (exempt excluded) already
// carries the name, compared case/whitespace-insensitively.
func (p *partition) studentNameTaken(name, exemptRUT string) bool {
	clean := core.CleanString(name, true)
	for rut, st := range p.students {
		if rut == exemptRUT {
			continue
		}
		if core.CleanString(st.Name, true) == clean {
			return true
		}
	}
	return false
}

// substituteRUT rewrites a renamed student's RUT everywhere it is referenced:
// course rosters and both session attendance sets.
func (p *partition) substituteRUT(oldRUT, newRUT string) {
	for code, co := range p.courses {
		if co.Roster.Has(oldRUT) {
			co.Roster.Remove(oldRUT)
			co.Roster.Add(newRUT)
			p.courses[code] = co
		}
	}
	for id, s := range p.sessions {
		if s.Present.Has(oldRUT) {
			s.Present.Remove(oldRUT)
			s.Present.Add(newRUT)
		}
		if s.Justified.Has(oldRUT) {
			s.Justified.Remove(oldRUT)
			s.Justified.Add(newRUT)
		}
		p.sessions[id] = s
	}
}

// purgeRUT removes a deleted student's RUT from every course roster and every
// session attendance set.
func (p *partition) purgeRUT(rut string) {
	for code, co := range p.courses {
		if co.Roster.Has(rut) {
			co.Roster.Remove(rut)
			p.courses[code] = co
		}
	}
	for id, s := range p.sessions {
		s.Present.Remove(rut)
		s.Justified.Remove(rut)
		p.sessions[id] = s
	}
}
