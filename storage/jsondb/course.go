package jsondb

import (
	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourses(accountID int, courses []course.Course) ([]course.Course, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if len(courses) == 0 {
		return []course.Course{}, nil
	}

	// the base code is reserved across all accounts, sections included
	base := course.BaseCode(courses[0].Code)
	for otherID, other := range db.partitions {
		if otherID == accountID {
			continue
		}
		for code := range other.courses {
			if course.BaseCode(code) == base {
				return nil, course.ErrCodeTakenGlobal
			}
		}
	}

	p := db.partition(accountID)
	for _, co := range courses {
		if _, ok := p.courses[co.Code]; ok {
			return nil, course.ErrCodeExists
		}
	}
	if len(courses) == 1 {
		clean := core.CleanString(courses[0].Name, true)
		for _, existing := range p.courses {
			if core.CleanString(existing.Name, true) == clean {
				return nil, course.ErrNameExists
			}
		}
	} else {
		cleanBase := core.CleanString(courses[0].BaseName(), true)
		for _, existing := range p.courses {
			if existing.IsSection() && core.CleanString(existing.BaseName(), true) == cleanBase {
				return nil, course.ErrBaseNameExists
			}
		}
	}

	created := make([]course.Course, 0, len(courses))
	for _, co := range courses {
		co = co.Clone()
		p.courses[co.Code] = co
		created = append(created, co.Clone())
	}

	if err := db.saveData(); err != nil {
		return nil, err
	}
	return created, nil
}

func (repo *courseRepository) GetCourse(accountID int, code string) (course.Course, error) {
	db := repo.db
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	p, ok := db.partitions[accountID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	co, ok := p.courses[code]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	return co.Clone(), nil
}

func (repo *courseRepository) QueryCourses(accountID int) ([]course.Course, error) {
	db := repo.db
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	p, ok := db.partitions[accountID]
	if !ok {
		return []course.Course{}, nil
	}
	courses := make([]course.Course, 0, len(p.courses))
	for _, code := range courseKeys(p.courses) {
		courses = append(courses, p.courses[code].Clone())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(accountID int, oldCode string, co course.Course) (course.Course, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	stored, ok := p.courses[oldCode]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if co.Code != oldCode {
		if _, ok := p.courses[co.Code]; ok {
			return course.Course{}, course.ErrCodeExists
		}
	}
	clean := core.CleanString(co.Name, true)
	for code, existing := range p.courses {
		if code == oldCode {
			continue
		}
		if core.CleanString(existing.Name, true) == clean {
			return course.Course{}, course.ErrNameExists
		}
	}

	stored.Code = co.Code
	stored.Name = co.Name
	stored.Schedule = co.Schedule
	if co.Code != oldCode {
		delete(p.courses, oldCode)
		for id, s := range p.sessions {
			if s.CourseCode == oldCode {
				s.CourseCode = co.Code
				p.sessions[id] = s
			}
		}
	}
	p.courses[stored.Code] = stored

	if err := db.saveData(); err != nil {
		return course.Course{}, err
	}
	return stored.Clone(), nil
}

func (repo *courseRepository) AssignRoster(accountID int, code string, roster core.StringSet) (course.Course, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	stored, ok := p.courses[code]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}

	// a student may sit in at most one section of the same family
	base := course.BaseCode(code)
	for otherCode, other := range p.courses {
		if otherCode == code || course.BaseCode(otherCode) != base {
			continue
		}
		if other.Roster.Intersects(roster) {
			return course.Course{}, course.ErrRosterConflict
		}
	}

	stored.Roster = roster.Copy()
	p.courses[code] = stored

	if err := db.saveData(); err != nil {
		return course.Course{}, err
	}
	return stored.Clone(), nil
}

func (repo *courseRepository) CloseCourse(accountID int, code string) (course.Course, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	stored, ok := p.courses[code]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}

	stored.Closed = true
	stored.Name += course.ClosedMarker
	p.courses[code] = stored

	if err := db.saveData(); err != nil {
		return course.Course{}, err
	}
	return stored.Clone(), nil
}

func (repo *courseRepository) SetMinAttendance(accountID int, code string, pct float64) (course.Course, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	stored, ok := p.courses[code]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}

	stored.MinAttendance = pct
	p.courses[code] = stored

	if err := db.saveData(); err != nil {
		return course.Course{}, err
	}
	return stored.Clone(), nil
}

func (repo *courseRepository) DeleteCourse(accountID int, code string) error {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	if _, ok := p.courses[code]; !ok {
		return course.ErrNotFound
	}

	delete(p.courses, code)
	for id, s := range p.sessions {
		if s.CourseCode == code {
			delete(p.sessions, id)
		}
	}
	return db.saveData()
}
