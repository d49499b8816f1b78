// Package user holds the staff directory, login sessions and the edit policy
// that decides which case fields a user may change.
package user

import (
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/turtacn/legajos-penal/pkg/errors"
)

// Role is the authorization level of a staff member.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is one entry of the staff directory.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
	// Attorney is the name stored in the abogado column for cases assigned
	// to this user. Empty for staff without cases of their own.
	Attorney string
	// EditLocked removes every editable field.
	EditLocked bool
	// DenyFields are front-end field names subtracted from the editable set.
	DenyFields []string
}

// ─────────────────────────────────────────────────────────────────────────────
// Directory
// ─────────────────────────────────────────────────────────────────────────────

// Directory is the read-only staff table loaded at startup.
type Directory struct {
	users map[string]*User
	names []string
}

// NewDirectory indexes users by username. Duplicate or empty usernames and
// unknown roles are rejected.
func NewDirectory(users []User) (*Directory, error) {
	d := &Directory{users: make(map[string]*User, len(users))}
	for i := range users {
		u := users[i]
		if u.Username == "" {
			return nil, errors.New(errors.ErrCodeValidation, "user directory: empty username")
		}
		if !u.Role.Valid() {
			return nil, errors.New(errors.ErrCodeValidation, "user directory: invalid role").
				WithDetail(u.Username + ": " + string(u.Role))
		}
		if _, dup := d.users[u.Username]; dup {
			return nil, errors.New(errors.ErrCodeConflict, "user directory: duplicate username").
				WithDetail(u.Username)
		}
		d.users[u.Username] = &u
		d.names = append(d.names, u.Username)
	}
	sort.Strings(d.names)
	return d, nil
}

// Authenticate checks the password against the stored bcrypt hash. Unknown
// users and wrong passwords yield the same error.
func (d *Directory) Authenticate(username, password string) (*User, error) {
	u, ok := d.users[username]
	if !ok || password == "" {
		return nil, errors.New(errors.ErrCodeInvalidCredentials, "Credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidCredentials, "Credenciales inválidas")
	}
	return u, nil
}

// Lookup returns the user with the given name.
func (d *Directory) Lookup(username string) (*User, bool) {
	u, ok := d.users[username]
	return u, ok
}

// AttorneyFor returns the attorney name linked to username, or "".
func (d *Directory) AttorneyFor(username string) string {
	if u, ok := d.users[username]; ok {
		return u.Attorney
	}
	return ""
}

// Usernames lists the directory in alphabetical order.
func (d *Directory) Usernames() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// HashPassword produces the bcrypt hash stored in the users configuration.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.InvalidParam("password must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "hash password")
	}
	return string(h), nil
}
