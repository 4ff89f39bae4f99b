package core

import (
	"strings"

	"github.com/go-crypt/x/bcrypt"
)

// SetPassword hashes the given plaintext password and stores the hash.
// Blank values and values matching the current password are ignored,
// so repeated profile updates with the same password are no-ops.
func (u *User) SetPassword(plain string) error {
	if strings.TrimSpace(plain) == "" {
		return nil
	}
	if u.Password != "" && u.CheckPassword(plain) {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
