package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	sid := uuid.New()

	token, err := m.GenerateAccessToken(sid, "akosua", "manager")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.SessionID != sid || claims.Username != "akosua" || claims.Role != "manager" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	token, _ := other.GenerateAccessToken(uuid.New(), "x", "staff")
	if _, err := m.ValidateAccessToken(token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}

	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := m.GenerateAccessToken(uuid.New(), "x", "staff")
	m.now = time.Now
	if _, err := m.ValidateAccessToken(expired); err == nil {
		t.Error("expired token must be rejected")
	}

	if _, err := m.ValidateAccessToken("not-a-jwt"); err == nil {
		t.Error("garbage must be rejected")
	}
}

func TestSealerRoundTrip(t *testing.T) {
	s, err := NewSealer("passphrase", "salt-value-16byt")
	if err != nil {
		t.Fatal(err)
	}

	a, err := s.Seal("9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.Seal("9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b")
	if bytes.Equal(a, b) {
		t.Error("two seals of the same token should differ by nonce")
	}

	got, err := s.Open(a)
	if err != nil {
		t.Fatal(err)
	}
	if got != "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b" {
		t.Errorf("opened = %q", got)
	}

	a[len(a)-1] ^= 0xff
	if _, err := s.Open(a); err == nil {
		t.Error("tampered value must not open")
	}
	if _, err := s.Open([]byte{1, 2}); err != ErrSealedTooShort {
		t.Errorf("err = %v", err)
	}
}

func TestSealerRejectsEmptyPassphrase(t *testing.T) {
	if _, err := NewSealer("", "salt"); err == nil {
		t.Error("expected error")
	}
}
