package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
	pkgAuth "github.com/polkiloo/trattoria/internal/pkg/auth"
	testhelpers "github.com/polkiloo/trattoria/internal/test"
)

func newStaffUseCase(store *testhelpers.MemoryStore) *StaffUseCase {
	return NewStaffUseCase(store, testhelpers.HasherStub{}, testhelpers.StrategyStub{}, discardLogger)
}

func TestStaffUseCaseCreate(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := newStaffUseCase(store)

	staff, err := uc.Create(context.Background(), NewStaff{Login: " wanda ", Password: "secret-pass", Role: model.RoleWaiter})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if staff.ID == 0 || staff.Login != "wanda" || staff.Name != "wanda" || staff.PasswordHash != "hash:secret-pass" {
		t.Fatalf("unexpected staff: %+v", staff)
	}

	cases := []struct {
		name string
		in   NewStaff
		want error
	}{
		{"empty login", NewStaff{Login: " ", Password: "secret-pass", Role: model.RoleWaiter}, domainErrors.ErrInvalidInput},
		{"unknown role", NewStaff{Login: "x", Password: "secret-pass", Role: "sommelier"}, domainErrors.ErrInvalidInput},
		{"duplicate login", NewStaff{Login: "wanda", Password: "secret-pass", Role: model.RoleCashier}, domainErrors.ErrAlreadyExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.Create(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	weak := NewStaffUseCase(store, testhelpers.HasherStub{HashFn: func(string) (string, error) {
		return "", pkgAuth.ErrWeakPassword
	}}, testhelpers.StrategyStub{}, discardLogger)
	if _, err := weak.Create(context.Background(), NewStaff{Login: "short", Password: "x", Role: model.RoleKitchen}); !errors.Is(err, domainErrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for weak password, got %v", err)
	}

	broken := NewStaffUseCase(store, testhelpers.HasherStub{HashFn: func(string) (string, error) {
		return "", errors.New("boom")
	}}, testhelpers.StrategyStub{}, discardLogger)
	if _, err := broken.Create(context.Background(), NewStaff{Login: "other", Password: "secret-pass", Role: model.RoleKitchen}); err == nil || errors.Is(err, domainErrors.ErrInvalidInput) {
		t.Fatalf("expected hasher failure to pass through, got %v", err)
	}
}

func TestStaffUseCaseAuthenticate(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	id := store.SeedStaff(model.Staff{Login: "carla", PasswordHash: "hash:pw-12345", Role: model.RoleCashier})
	uc := newStaffUseCase(store)

	staff, token, err := uc.Authenticate(context.Background(), "carla", "pw-12345")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if staff.ID != id || token != "token-1-cashier" {
		t.Fatalf("unexpected result: %+v %q", staff, token)
	}

	claims, err := uc.ParseToken(token)
	if err != nil || claims.StaffID != id || claims.Role != model.RoleCashier {
		t.Fatalf("unexpected claims %+v err=%v", claims, err)
	}
	if _, err := uc.ParseToken(""); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	cases := []struct {
		name, login, password string
	}{
		{"empty", "", ""},
		{"unknown login", "nobody", "pw-12345"},
		{"wrong password", "carla", "nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := uc.Authenticate(context.Background(), tc.login, tc.password); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
		})
	}

	failing := NewStaffUseCase(store, testhelpers.HasherStub{}, testhelpers.StrategyStub{IssueFn: func(pkgAuth.Claims) (string, error) {
		return "", errors.New("sign")
	}}, discardLogger)
	if _, _, err := failing.Authenticate(context.Background(), "carla", "pw-12345"); err == nil {
		t.Fatal("expected token issue failure")
	}

	store.Err = errors.New("db down")
	if _, _, err := uc.Authenticate(context.Background(), "carla", "pw-12345"); err == nil || errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestStaffUseCaseEnsureAdmin(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := newStaffUseCase(store)

	if err := uc.EnsureAdmin(context.Background(), "", "ignored"); err != nil {
		t.Fatalf("disabled bootstrap: %v", err)
	}
	if _, err := store.Staff().GetByLogin(context.Background(), "admin"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatal("bootstrap must be skipped without login")
	}

	if err := uc.EnsureAdmin(context.Background(), "admin", "admin-password"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	admin, err := store.Staff().GetByLogin(context.Background(), "admin")
	if err != nil || admin.Role != model.RoleAdmin {
		t.Fatalf("expected admin account, got %+v err=%v", admin, err)
	}

	if err := uc.EnsureAdmin(context.Background(), "admin", "other-password"); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	again, _ := store.Staff().GetByLogin(context.Background(), "admin")
	if again.PasswordHash != "hash:admin-password" {
		t.Fatal("existing admin must not be overwritten")
	}

	got, err := uc.GetByID(context.Background(), admin.ID)
	if err != nil || got.Login != "admin" {
		t.Fatalf("unexpected get: %+v err=%v", got, err)
	}

	store.Err = errors.New("db down")
	if err := uc.EnsureAdmin(context.Background(), "root", "admin-password"); err == nil {
		t.Fatal("expected storage error")
	}
}
