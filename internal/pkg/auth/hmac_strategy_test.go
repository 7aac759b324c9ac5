package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

func forge(s *HMACStrategy, payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload + ":" + s.sign(payload)))
}

func TestNewHMACStrategy_DefaultTTL(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy.ttl != 12*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
	if strategy.Name() != "hmac" {
		t.Fatalf("unexpected name %q", strategy.Name())
	}
}

func TestHMACStrategy_IssueAndParse(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken(Claims{StaffID: 42, Role: model.RoleCashier})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	claims, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.StaffID != 42 || claims.Role != model.RoleCashier {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestHMACStrategy_IssueRejectsIncompleteClaims(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if _, err := strategy.IssueToken(Claims{StaffID: 1}); err == nil {
		t.Fatal("expected error for missing role")
	}
	if _, err := strategy.IssueToken(Claims{Role: model.RoleAdmin}); err == nil {
		t.Fatal("expected error for missing staff id")
	}
}

func TestHMACStrategy_ParseRejections(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})
	future := time.Now().Add(time.Minute).Unix()

	valid, err := strategy.IssueToken(Claims{StaffID: 7, Role: model.RoleWaiter})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	raw, _ := base64.RawURLEncoding.DecodeString(valid)
	parts := strings.Split(string(raw), ":")
	parts[3] = "tampered"
	tampered := base64.RawURLEncoding.EncodeToString([]byte(strings.Join(parts, ":")))

	other := NewHMACStrategy("other", Options{TTL: time.Minute})
	foreign, _ := other.IssueToken(Claims{StaffID: 7, Role: model.RoleWaiter})

	cases := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%"},
		{"wrong parts", base64.RawURLEncoding.EncodeToString([]byte("only:two"))},
		{"tampered signature", tampered},
		{"foreign secret", foreign},
		{"bad staff id", forge(strategy, fmt.Sprintf("abc:waiter:%d", future))},
		{"zero staff id", forge(strategy, fmt.Sprintf("0:waiter:%d", future))},
		{"unknown role", forge(strategy, fmt.Sprintf("1:owner:%d", future))},
		{"bad expiry", forge(strategy, "1:waiter:soon")},
		{"expired", forge(strategy, fmt.Sprintf("1:waiter:%d", time.Now().Add(-time.Minute).Unix()))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := strategy.ParseToken(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
