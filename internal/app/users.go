package app

import (
	"strings"

	"github.com/turtacn/legajos-penal/internal/config"
	"github.com/turtacn/legajos-penal/internal/domain/user"
)

// NewDirectory converts the configured staff table into a user.Directory.
// Roles are case-insensitive; an empty role means a plain user.
func NewDirectory(users []config.UserConfig) (*user.Directory, error) {
	out := make([]user.User, 0, len(users))
	for _, u := range users {
		role := user.Role(strings.ToLower(strings.TrimSpace(u.Role)))
		if role == "" {
			role = user.RoleUser
		}
		out = append(out, user.User{
			Username:     strings.TrimSpace(u.Username),
			PasswordHash: u.PasswordHash,
			Role:         role,
			Attorney:     strings.TrimSpace(u.Attorney),
			EditLocked:   u.EditLocked,
			DenyFields:   append([]string(nil), u.DenyFields...),
		})
	}
	return user.NewDirectory(out)
}
