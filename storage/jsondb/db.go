// Package jsondb persists the whole domain store as two flat JSON documents:
// an accounts file (normalized RUT -> credentials) and a data file
// (account id -> owned partition). Every mutation rewrites the affected full
// snapshot before returning; the two files are never written transactionally,
// which is an accepted weakness of the format.
//
// The on-disk field names are the legacy Spanish schema and must not change.
package jsondb

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/account"
	"github.com/mroldanv/presente/core/course"
	"github.com/mroldanv/presente/core/session"
	"github.com/mroldanv/presente/core/student"
)

type partition struct {
	students      map[string]student.Student
	courses       map[string]course.Course
	sessions      map[int]session.Session
	nextSessionID int
}

func newPartition() *partition {
	return &partition{
		students:      make(map[string]student.Student),
		courses:       make(map[string]course.Course),
		sessions:      make(map[int]session.Session),
		nextSessionID: 1,
	}
}

// DB holds the whole store in memory and mirrors it to the two snapshot
// files. A single mutex serializes all operations; every operation either
// fully succeeds (including persistence) or fails before any mutation.
type DB struct {
	mutex        sync.RWMutex
	accountsFile string
	dataFile     string

	accounts      map[string]account.Account // keyed by normalized RUT
	nextAccountID int
	partitions    map[int]*partition
}

// Open loads both snapshot files. Missing or malformed files load as an
// empty store; unreadable records are discarded best-effort rather than
// failing startup.
func Open(conf *core.Config) (*DB, error) {
	db := &DB{
		accountsFile:  conf.AccountsFile,
		dataFile:      conf.DataFile,
		accounts:      make(map[string]account.Account),
		nextAccountID: 1,
		partitions:    make(map[int]*partition),
	}
	db.loadAccounts()
	db.loadData()

	// make sure the accounts file exists from the first run on
	if _, err := os.Stat(db.accountsFile); os.IsNotExist(err) {
		if err := db.saveAccounts(); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// partition returns the owned data of an account, initializing it lazily;
// a registered account may predate its first data write.
func (db *DB) partition(accountID int) *partition {
	p, ok := db.partitions[accountID]
	if !ok {
		p = newPartition()
		db.partitions[accountID] = p
	}
	return p
}

// Persisted document shapes (legacy schema).

type accountDoc struct {
	ID           int    `json:"id"`
	PasswordHash string `json:"password_hash"`
	Salt         string `json:"salt"`
}

type studentDoc struct {
	RUT  string `json:"rut"`
	Name string `json:"nombre"`
}

type courseDoc struct {
	Code          string   `json:"codigo"`
	Name          string   `json:"nombre"`
	Schedule      string   `json:"horario"`
	RosterRUTs    []string `json:"estudiantes_ruts"`
	Closed        bool     `json:"cerrado"`
	MinAttendance float64  `json:"min_asistencia"`
}

type sessionDoc struct {
	ID         int      `json:"id"`
	CourseCode string   `json:"codigo_curso"`
	Date       string   `json:"fecha"` // ISO-8601
	Present    []string `json:"ruts_presentes"`
	Justified  []string `json:"ruts_justificados"`
}

type partitionDoc struct {
	Students      []studentDoc `json:"estudiantes"`
	Courses       []courseDoc  `json:"cursos"`
	Sessions      []sessionDoc `json:"sesiones"`
	NextSessionID int          `json:"siguiente_id_sesion"`
}

func (db *DB) loadAccounts() {
	raw, err := os.ReadFile(db.accountsFile)
	if err != nil {
		return
	}
	var docs map[string]accountDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return // malformed snapshot: start empty
	}
	for rut, doc := range docs {
		db.accounts[rut] = account.Account{
			ID:           doc.ID,
			RUT:          rut,
			PasswordHash: doc.PasswordHash,
			Salt:         doc.Salt,
		}
		if doc.ID >= db.nextAccountID {
			db.nextAccountID = doc.ID + 1
		}
	}
}

func (db *DB) loadData() {
	raw, err := os.ReadFile(db.dataFile)
	if err != nil {
		return
	}
	var docs map[string]partitionDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return // malformed snapshot: start empty
	}
	for key, doc := range docs {
		accountID, err := strconv.Atoi(key)
		if err != nil {
			continue // unreadable partition key: discard
		}
		p := newPartition()
		for _, st := range doc.Students {
			p.students[st.RUT] = student.Student{RUT: st.RUT, Name: st.Name}
		}
		for _, co := range doc.Courses {
			p.courses[co.Code] = course.Course{
				Code:          co.Code,
				Name:          co.Name,
				Schedule:      co.Schedule,
				Roster:        core.NewStringSet(co.RosterRUTs...),
				Closed:        co.Closed,
				MinAttendance: co.MinAttendance,
			}
		}
		for _, s := range doc.Sessions {
			p.sessions[s.ID] = session.Session{
				ID:         s.ID,
				CourseCode: s.CourseCode,
				Date:       parseDate(s.Date),
				Present:    core.NewStringSet(s.Present...),
				Justified:  core.NewStringSet(s.Justified...),
			}
		}
		if doc.NextSessionID > 0 {
			p.nextSessionID = doc.NextSessionID
		}
		db.partitions[accountID] = p
	}
}

// saveAccounts rewrites the accounts snapshot. Callers must hold the lock.
func (db *DB) saveAccounts() error {
	docs := make(map[string]accountDoc, len(db.accounts))
	for rut, acct := range db.accounts {
		docs[rut] = accountDoc{ID: acct.ID, PasswordHash: acct.PasswordHash, Salt: acct.Salt}
	}
	return writeSnapshot(db.accountsFile, docs)
}

// saveData rewrites the data snapshot. Callers must hold the lock.
func (db *DB) saveData() error {
	docs := make(map[string]partitionDoc, len(db.partitions))
	for accountID, p := range db.partitions {
		doc := partitionDoc{
			Students:      make([]studentDoc, 0, len(p.students)),
			Courses:       make([]courseDoc, 0, len(p.courses)),
			Sessions:      make([]sessionDoc, 0, len(p.sessions)),
			NextSessionID: p.nextSessionID,
		}
		for _, rut := range studentKeys(p.students) {
			st := p.students[rut]
			doc.Students = append(doc.Students, studentDoc{RUT: st.RUT, Name: st.Name})
		}
		for _, code := range courseKeys(p.courses) {
			co := p.courses[code]
			doc.Courses = append(doc.Courses, courseDoc{
				Code:          co.Code,
				Name:          co.Name,
				Schedule:      co.Schedule,
				RosterRUTs:    co.Roster.Sorted(),
				Closed:        co.Closed,
				MinAttendance: co.MinAttendance,
			})
		}
		for _, id := range sessionKeys(p.sessions) {
			s := p.sessions[id]
			doc.Sessions = append(doc.Sessions, sessionDoc{
				ID:         s.ID,
				CourseCode: s.CourseCode,
				Date:       s.Date.Format(time.RFC3339Nano),
				Present:    s.Present.Sorted(),
				Justified:  s.Justified.Sorted(),
			})
		}
		docs[strconv.Itoa(accountID)] = doc
	}
	return writeSnapshot(db.dataFile, docs)
}

// writeSnapshot replaces a snapshot file whole, via a same-directory rename,
// so a crash mid-write never leaves a truncated document behind.
func writeSnapshot(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshaling snapshot %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "writing snapshot %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "replacing snapshot %s", path)
	}
	return nil
}

func parseDate(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	// legacy snapshots carry naive ISO-8601 timestamps without a zone
	t, _ := time.Parse("2006-01-02T15:04:05", raw)
	return t
}

func studentKeys(m map[string]student.Student) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func courseKeys(m map[string]course.Course) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sessionKeys(m map[int]session.Session) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
