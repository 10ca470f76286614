package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const userInfoPath = "/auth/v1/user"

// RemoteVerifier asks the hosted auth service who owns the token.
type RemoteVerifier struct {
	client *resty.Client
}

type remoteUser struct {
	ID string `json:"id"`
}

func NewRemoteVerifier(baseURL, apiKey string, timeout time.Duration) *RemoteVerifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("apikey", apiKey)
	return &RemoteVerifier{client: client}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (string, error) {
	var user remoteUser
	res, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get(userInfoPath)
	if err != nil {
		return "", fmt.Errorf("auth service request failed: %w", err)
	}

	switch {
	case res.StatusCode() == http.StatusUnauthorized || res.StatusCode() == http.StatusForbidden:
		return "", ErrInvalidToken
	case res.IsError():
		return "", fmt.Errorf("auth service returned status %d", res.StatusCode())
	case user.ID == "":
		return "", ErrInvalidToken
	}
	return user.ID, nil
}
