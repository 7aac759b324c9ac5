package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/domain/repository"
	pkgAuth "github.com/polkiloo/trattoria/internal/pkg/auth"
)

// NewStaff carries the fields required to open a staff account.
type NewStaff struct {
	Login    string
	Name     string
	Password string
	Role     model.Role
}

// StaffUseCase handles staff accounts and session tokens.
type StaffUseCase struct {
	repos  repository.Factory
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
	logger *slog.Logger
}

// NewStaffUseCase constructs StaffUseCase.
func NewStaffUseCase(repos repository.Factory, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, logger *slog.Logger) *StaffUseCase {
	return &StaffUseCase{repos: repos, hasher: hasher, tokens: strategy, logger: logger}
}

// Create opens a new staff account.
func (u *StaffUseCase) Create(ctx context.Context, in NewStaff) (*model.Staff, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" {
		return nil, fmt.Errorf("%w: login is required", domainErrors.ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domainErrors.ErrInvalidInput, in.Role)
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrWeakPassword) {
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidInput, err)
		}
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = login
	}
	staff := &model.Staff{Login: login, Name: name, PasswordHash: hash, Role: in.Role}
	if err := u.repos.Staff().Create(ctx, staff); err != nil {
		return nil, err
	}

	u.logger.Info("staff account created", slog.String("login", login), slog.String("role", string(in.Role)))
	return staff, nil
}

// Authenticate validates credentials and returns auth token.
func (u *StaffUseCase) Authenticate(ctx context.Context, login, password string) (*model.Staff, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	staff, err := u.repos.Staff().GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(staff.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(pkgAuth.Claims{StaffID: staff.ID, Role: staff.Role})
	if err != nil {
		return nil, "", err
	}

	return staff, token, nil
}

// ParseToken extracts the staff identity from provided token.
func (u *StaffUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches staff member by identifier.
func (u *StaffUseCase) GetByID(ctx context.Context, id int64) (*model.Staff, error) {
	return u.repos.Staff().GetByID(ctx, id)
}

// EnsureAdmin creates the bootstrap administrator when it does not exist yet.
// An empty login disables bootstrapping.
func (u *StaffUseCase) EnsureAdmin(ctx context.Context, login, password string) error {
	if login == "" {
		return nil
	}
	_, err := u.repos.Staff().GetByLogin(ctx, login)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return err
	}
	_, err = u.Create(ctx, NewStaff{Login: login, Name: "Administrator", Password: password, Role: model.RoleAdmin})
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		return nil
	}
	return err
}
