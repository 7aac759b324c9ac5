package auth

import (
	"time"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

// Claims identify the staff member a token was issued to.
type Claims struct {
	StaffID int64
	Role    model.Role
}

// Strategy issues and verifies staff session tokens.
type Strategy interface {
	IssueToken(claims Claims) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
