package clients

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// AuthClient client for working with the authentication endpoints
type AuthClient struct {
	BaseURL string
	client  *resty.Client
}

// NewAuthClient creates a new auth client. tokens is only used for the
// logout-all call; login and register are unauthenticated.
func NewAuthClient(baseURL string, tokens TokenSource) *AuthClient {
	client := resty.New()
	if tokens != nil {
		client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if t := tokens.Token(); t != "" {
				r.SetHeader("Authorization", "Bearer "+t)
			}
			return nil
		})
	}

	return &AuthClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token
func (ac *AuthClient) Login(ctx context.Context, email, password string) (string, error) {
	var result loginResponse
	resp, err := ac.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&result).
		Post(ac.BaseURL + "/auth/login")
	if err != nil {
		return "", fmt.Errorf("failed to log in: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", statusErr(resp)
	}

	if result.AccessToken == "" {
		return "", fmt.Errorf("login response did not contain an access token")
	}

	return result.AccessToken, nil
}

// Register creates a new account
func (ac *AuthClient) Register(ctx context.Context, displayName, email, password string) error {
	resp, err := ac.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"display_name": displayName,
			"email":        email,
			"password":     password,
		}).
		Post(ac.BaseURL + "/auth/register")
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return statusErr(resp)
	}

	return nil
}

// LogoutAll revokes every session for the current user. Callers treat this
// as best-effort: the local credential is cleared regardless of the outcome.
func (ac *AuthClient) LogoutAll(ctx context.Context) error {
	resp, err := ac.client.R().
		SetContext(ctx).
		Post(ac.BaseURL + "/auth/logout/all")
	if err != nil {
		return fmt.Errorf("failed to log out remote sessions: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return statusErr(resp)
	}

	return nil
}
