package jsondb

import (
	"github.com/mroldanv/presente/core/session"
)

type sessionRepository struct {
	db *DB
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(accountID int, s session.Session) (session.Session, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	s.ID = p.nextSessionID
	p.nextSessionID++
	p.sessions[s.ID] = s.Clone()

	if err := db.saveData(); err != nil {
		return session.Session{}, err
	}
	return s, nil
}

func (repo *sessionRepository) GetSession(accountID, id int) (session.Session, error) {
	db := repo.db
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	p, ok := db.partitions[accountID]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	s, ok := p.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return s.Clone(), nil
}

func (repo *sessionRepository) QuerySessionsByCourse(accountID int, code string) ([]session.Session, error) {
	db := repo.db
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	p, ok := db.partitions[accountID]
	if !ok {
		return []session.Session{}, nil
	}
	sessions := make([]session.Session, 0)
	for _, id := range sessionKeys(p.sessions) {
		if s := p.sessions[id]; s.CourseCode == code {
			sessions = append(sessions, s.Clone())
		}
	}
	return sessions, nil
}

func (repo *sessionRepository) UpdateSession(accountID int, s session.Session) (session.Session, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	if _, ok := p.sessions[s.ID]; !ok {
		return session.Session{}, session.ErrNotFound
	}
	p.sessions[s.ID] = s.Clone()

	if err := db.saveData(); err != nil {
		return session.Session{}, err
	}
	return s, nil
}

func (repo *sessionRepository) DeleteSession(accountID, id int) error {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	p := db.partition(accountID)
	if _, ok := p.sessions[id]; !ok {
		return session.ErrNotFound
	}
	delete(p.sessions, id)
	return db.saveData()
}
