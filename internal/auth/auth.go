// Package auth resolves bearer credentials to user IDs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akashvaddapelli/Resumeiq/internal/config"
)

var (
	ErrMissingToken = errors.New("authorization header missing")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier checks a bearer token and returns the user it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// ExtractBearerToken pulls the token out of an Authorization header value.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(header[7:])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// NewVerifier builds the verifier selected by AUTH_MODE.
func NewVerifier(cfg config.AuthConfig, timeout time.Duration) (Verifier, error) {
	switch cfg.Mode {
	case config.AuthModeJWT:
		return NewJWTVerifier(cfg.JWTSecret), nil
	case config.AuthModeRemote:
		return NewRemoteVerifier(cfg.URL, cfg.APIKey, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}
