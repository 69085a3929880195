package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned for a malformed, unknown or mismatching access token.
var ErrInvalidToken = errors.New("invalid access token")

// Access is one connection of an automation service to an integration.
type Access struct {
	ConsumerID string    `json:"consumer_id"`
	AppName    string    `json:"app_name"`
	SecretHash string    `json:"secret_hash"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateAccess registers a connection and returns its token, <consumer_id>.<secret>.
// The secret is only kept hashed.
func (s *Store) CreateAccess(ctx context.Context, integrationID, appName string) (string, Access, error) {
	consumerID := uuid.NewString()
	secret := strings.ReplaceAll(uuid.NewString(), "-", "")

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.hashCost)
	if err != nil {
		return "", Access{}, fmt.Errorf("failed to hash secret: %w", err)
	}
	access := Access{
		ConsumerID: consumerID,
		AppName:    appName,
		SecretHash: string(hash),
		CreatedAt:  s.now().UTC(),
	}
	data, err := json.Marshal(access)
	if err != nil {
		return "", Access{}, fmt.Errorf("failed to marshal access: %w", err)
	}
	if err := s.client.HSet(ctx, AccessKey(integrationID), consumerID, data).Err(); err != nil {
		return "", Access{}, fmt.Errorf("failed to save access: %w", err)
	}
	return consumerID + "." + secret, access, nil
}

// VerifyAccess checks a token and returns the app name of its connection.
func (s *Store) VerifyAccess(ctx context.Context, integrationID, token string) (string, error) {
	consumerID, secret, ok := strings.Cut(token, ".")
	if !ok || consumerID == "" || secret == "" {
		return "", ErrInvalidToken
	}

	access, err := s.getAccess(ctx, integrationID, consumerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(access.SecretHash), []byte(secret)); err != nil {
		return "", ErrInvalidToken
	}
	return access.AppName, nil
}

// DeleteAccess removes a connection.
func (s *Store) DeleteAccess(ctx context.Context, integrationID, consumerID string) error {
	n, err := s.client.HDel(ctx, AccessKey(integrationID), consumerID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete access: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("connection %s: %w", consumerID, ErrNotFound)
	}
	return nil
}

// ListAccess returns the connections of an integration, oldest first.
func (s *Store) ListAccess(ctx context.Context, integrationID string) ([]Access, error) {
	raw, err := s.client.HGetAll(ctx, AccessKey(integrationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list access: %w", err)
	}

	list := make([]Access, 0, len(raw))
	for _, data := range raw {
		var a Access
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal access: %w", err)
		}
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (s *Store) getAccess(ctx context.Context, integrationID, consumerID string) (Access, error) {
	data, err := s.client.HGet(ctx, AccessKey(integrationID), consumerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Access{}, fmt.Errorf("connection %s: %w", consumerID, ErrNotFound)
		}
		return Access{}, fmt.Errorf("failed to get access: %w", err)
	}
	var a Access
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return Access{}, fmt.Errorf("failed to unmarshal access: %w", err)
	}
	return a, nil
}
