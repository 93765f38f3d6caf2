package jsondb

import (
	"github.com/mroldanv/presente/core/account"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(acct account.Account) (account.Account, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if err := db.checkAccountRUTFree(acct.RUT); err != nil {
		return account.Account{}, err
	}

	acct.ID = db.nextAccountID
	db.nextAccountID++
	db.accounts[acct.RUT] = acct
	db.partitions[acct.ID] = newPartition()

	if err := db.saveAccounts(); err != nil {
		return account.Account{}, err
	}
	return acct, nil
}

func (repo *accountRepository) GetAccountByID(id int) (account.Account, error) {
	db := repo.db
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	for _, acct := range db.accounts {
		if acct.ID == id {
			return acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByRUT(rut string) (account.Account, error) {
	db := repo.db
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	acct, ok := db.accounts[rut]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return acct, nil
}

func (repo *accountRepository) UpdateAccount(oldRUT string, acct account.Account) (account.Account, error) {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.accounts[oldRUT]; !ok {
		return account.Account{}, account.ErrNotFound
	}
	if acct.RUT != oldRUT {
		if err := db.checkAccountRUTFree(acct.RUT); err != nil {
			return account.Account{}, err
		}
		delete(db.accounts, oldRUT)
	}
	db.accounts[acct.RUT] = acct

	if err := db.saveAccounts(); err != nil {
		return account.Account{}, err
	}
	return acct, nil
}

func (repo *accountRepository) DeleteAccount(id int) error {
	db := repo.db
	db.mutex.Lock()
	defer db.mutex.Unlock()

	var rut string
	for key, acct := range db.accounts {
		if acct.ID == id {
			rut = key
			break
		}
	}
	if rut == "" {
		return account.ErrNotFound
	}

	delete(db.accounts, rut)
	delete(db.partitions, id)

	if err := db.saveAccounts(); err != nil {
		return err
	}
	return db.saveData()
}

// checkAccountRUTFree enforces the namespace exclusion: a login RUT may not
// collide with another account nor with any student of any partition.
// Callers must hold the lock.
func (db *DB) checkAccountRUTFree(rut string) error {
	if _, ok := db.accounts[rut]; ok {
		return account.ErrRUTExists
	}
	for _, p := range db.partitions {
		if _, ok := p.students[rut]; ok {
			return account.ErrRUTIsStudent
		}
	}
	return nil
}
