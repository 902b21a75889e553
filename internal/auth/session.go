// Package auth simulates the storefront login. No credentials are
// verified: the presence of the stored user record is the whole
// "logged in" signal. A signed session token rides along in a cookie
// so the web layer can tell the two states apart cheaply.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/velvetvogue/storefront/internal/domain"
	"github.com/velvetvogue/storefront/internal/store"
)

// Key is where the user record lives in the persistent store.
const Key = "vv_user"

// RedirectDelay simulates the post-login account lookup before the
// shopper is sent back to the storefront.
const RedirectDelay = 900 * time.Millisecond

const sessionTTL = 24 * time.Hour

// Service owns the simulated session lifecycle.
type Service struct {
	kv     store.KV
	log    *slog.Logger
	secret []byte

	sleep func(time.Duration)
}

func NewService(kv store.KV, secret []byte, log *slog.Logger) *Service {
	return &Service{
		kv:     kv,
		log:    log,
		secret: secret,
		sleep:  time.Sleep,
	}
}

// Login stores the user record and returns a signed session token.
// The simulated account lookup delay runs before returning.
func (s *Service) Login(ctx context.Context, user domain.User) (string, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal user failed: %w", err)
	}
	if err := s.kv.Set(ctx, Key, data); err != nil {
		return "", fmt.Errorf("persist user failed: %w", err)
	}

	s.sleep(RedirectDelay)

	claims := jwt.MapClaims{
		"sub": user.Email,
		"exp": time.Now().Add(sessionTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token failed: %w", err)
	}
	return token, nil
}

// Current returns the stored user record. A missing or undecodable
// record means logged out.
func (s *Service) Current(ctx context.Context) (domain.User, bool) {
	data, err := s.kv.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, false
	}
	if err != nil {
		s.log.Warn("user record read failed", "error", err)
		return domain.User{}, false
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		s.log.Warn("user record does not decode", "error", err)
		return domain.User{}, false
	}
	return user, true
}

// Logout deletes the user record, ending the simulated session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("delete user failed: %w", err)
	}
	return nil
}

// VerifyToken checks a session cookie's signature and expiry.
func (s *Service) VerifyToken(token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("parse session token failed: %w", err)
	}
	if !parsed.Valid {
		return errors.New("session token is not valid")
	}
	return nil
}
