package account

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"

	"github.com/mroldanv/presente/core"
)

const (
	saltLen    = 16 // bytes
	hashIter   = 10000
	hashKeyLen = 32
)

// Account is a teacher login, keyed by the normalized RUT. ID partitions all
// owned data (students, courses, sessions) and is assigned once, monotonically,
// at registration.
type Account struct {
	ID           int    `json:"id"`
	RUT          string `json:"rut"`
	PasswordHash string `json:"-"` // hex
	Salt         string `json:"-"` // hex
}

func hashPassword(pwd string, salt []byte) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(pwd), salt, hashIter, hashKeyLen, sha256.New))
}

// SetPassword draws a fresh random salt and stores the salted PBKDF2-SHA256
// hash. Both are hex-encoded for the snapshot format.
func (a *Account) SetPassword(pwd string) error {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	a.Salt = hex.EncodeToString(salt)
	a.PasswordHash = hashPassword(pwd, salt)
	return nil
}

// CheckPassword recomputes the hash with the stored salt and compares in
// constant time.
func (a *Account) CheckPassword(pwd string) bool {
	salt, err := hex.DecodeString(a.Salt)
	if err != nil {
		return false
	}
	hash := hashPassword(pwd, salt)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(a.PasswordHash)) == 1
}

// NewAccount contains information needed to register an Account.
type NewAccount struct {
	RUT      string `json:"rut" validate:"required,rut"`
	Password string `json:"password" validate:"required"`
}

func (na *NewAccount) Validate() error {
	na.RUT = core.CleanString(na.RUT)
	return core.Validate.Struct(na)
}

// UpdateCredentials defines a credential change: new RUT and/or new password.
// The current password must always be re-proven; the new password must always
// be supplied (resubmitting the current one means "keep it").
type UpdateCredentials struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewRUT          string `json:"new_rut" validate:"required,rut"`
	NewPassword     string `json:"new_password" validate:"required"`
}

func (uc *UpdateCredentials) Validate() error {
	uc.NewRUT = core.CleanString(uc.NewRUT)
	return core.Validate.Struct(uc)
}
