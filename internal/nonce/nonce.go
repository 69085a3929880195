package nonce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

// ErrInvalid is returned for a nonce that does not match the action and user
// or that has expired.
var ErrInvalid = errors.New("invalid nonce")

// length is the number of hex characters kept from the MAC.
const length = 12

// Manager mints and checks action nonces. A nonce is valid for the tick it
// was minted in and the next one, a tick being half the lifetime.
type Manager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func New(secret string, lifetime time.Duration) *Manager {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), lifetime: lifetime, now: time.Now}
}

// Create mints the nonce of action for user.
func (m *Manager) Create(action, user string) string {
	return m.mac(m.tick(), action, user)
}

// Verify checks a nonce. It reports 1 when minted in the current tick and 2
// when minted in the previous one.
func (m *Manager) Verify(nonce, action, user string) (int, error) {
	if nonce == "" {
		return 0, ErrInvalid
	}
	tick := m.tick()
	for age := int64(0); age < 2; age++ {
		if hmac.Equal([]byte(nonce), []byte(m.mac(tick-age, action, user))) {
			return int(age) + 1, nil
		}
	}
	return 0, ErrInvalid
}

func (m *Manager) tick() int64 {
	half := int64(m.lifetime / 2)
	if half <= 0 {
		half = 1
	}
	return m.now().UnixNano() / half
}

func (m *Manager) mac(tick int64, action, user string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(strconv.FormatInt(tick, 10) + "|" + action + "|" + user))
	return hex.EncodeToString(h.Sum(nil))[:length]
}
