package nonce

import (
	"errors"
	"testing"
	"time"
)

func newAt(t time.Time) *Manager {
	m := New("secret", 24*time.Hour)
	m.now = func() time.Time { return t }
	return m
}

func TestCreateVerify(t *testing.T) {
	base := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	minted := newAt(base).Create("ian-nonce", "admin")

	tests := []struct {
		name    string
		at      time.Time
		action  string
		user    string
		want    int
		wantErr bool
	}{
		{"same tick", base, "ian-nonce", "admin", 1, false},
		{"previous tick", base.Add(12 * time.Hour), "ian-nonce", "admin", 2, false},
		{"expired", base.Add(24 * time.Hour), "ian-nonce", "admin", 0, true},
		{"other action", base, "other", "admin", 0, true},
		{"other user", base, "ian-nonce", "editor", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newAt(tt.at).Verify(minted, tt.action, tt.user)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("Verify() err = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Verify() = %d, %v, want %d", got, err, tt.want)
			}
		})
	}
}

func TestVerifyEmpty(t *testing.T) {
	if _, err := New("s", time.Hour).Verify("", "a", "u"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestSecretMatters(t *testing.T) {
	a := New("one", time.Hour).Create("act", "u")
	if _, err := New("two", time.Hour).Verify(a, "act", "u"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("nonce from another secret verified")
	}
	if len(a) != length {
		t.Fatalf("len = %d", len(a))
	}
}
