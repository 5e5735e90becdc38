package repository

import (
	"github.com/immochat/auth-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Identity IdentityRepository
	Code     OTPRepository
	Token    TokenRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Identity: NewIdentityRepository(db),
		Code:     NewOTPRepository(db),
		Token:    NewTokenRepository(db),
	}
}
