package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/bahikhata-erp/bahikhata/internal/shared"
)

// UserFinder abstracts account lookup for the service.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// Service validates credentials and manages API tokens in Redis. The token
// resolves to the {firmID, username} actor that the billing engine trusts.
type Service struct {
	repo   UserFinder
	client *redis.Client
	ttl    time.Duration
}

// NewService constructs Service.
func NewService(repo UserFinder, client *redis.Client, ttl time.Duration) *Service {
	return &Service{repo: repo, client: client, ttl: ttl}
}

type tokenPayload struct {
	FirmID   int64  `json:"firm_id"`
	Username string `json:"username"`
}

func tokenKey(token string) string {
	return "auth:token:" + token
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken creates an opaque token for the user.
func (s *Service) IssueToken(ctx context.Context, user *User) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(tokenPayload{FirmID: user.FirmID, Username: user.Username})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, tokenKey(token), payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveToken returns the actor a token stands for.
func (s *Service) ResolveToken(ctx context.Context, token string) (shared.Actor, error) {
	if token == "" {
		return shared.Actor{}, ErrTokenInvalid
	}
	raw, err := s.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.Actor{}, ErrTokenInvalid
		}
		return shared.Actor{}, err
	}
	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return shared.Actor{}, ErrTokenInvalid
	}
	return shared.Actor{FirmID: payload.FirmID, Username: payload.Username}, nil
}

// RevokeToken removes a token.
func (s *Service) RevokeToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.client.Del(ctx, tokenKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
