// Package oauth resolves provider access tokens into user profiles.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/billing/internal/config"
)

// ErrInvalidToken is returned when the provider rejects the access token.
var ErrInvalidToken = errors.New("oauth access token rejected")

// Profile is the identity a provider vouches for.
type Profile struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// Client fetches profiles from Google and GitHub.
type Client interface {
	Profile(ctx context.Context, provider, accessToken string) (*Profile, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	http          *resty.Client
	googleInfoURL string
	githubBaseURL string
}

// NewClient builds an OAuth profile client using the configured endpoints.
func NewClient(cfg config.OAuthConfig) *APIClient {
	return &APIClient{
		http:          resty.New().SetTimeout(10 * time.Second),
		googleInfoURL: cfg.GoogleUserInfoURL,
		githubBaseURL: strings.TrimSuffix(cfg.GitHubAPIURL, "/"),
	}
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (c *APIClient) Profile(ctx context.Context, provider, accessToken string) (*Profile, error) {
	switch provider {
	case "google":
		return c.googleProfile(ctx, accessToken)
	case "github":
		return c.githubProfile(ctx, accessToken)
	}
	return nil, fmt.Errorf("unsupported oauth provider %q", provider)
}

func (c *APIClient) googleProfile(ctx context.Context, accessToken string) (*Profile, error) {
	info := new(googleUserInfo)
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(info).
		Get(c.googleInfoURL)
	if err := checkResponse("google", resp, err); err != nil {
		return nil, err
	}
	if info.Email == "" || !info.EmailVerified {
		return nil, fmt.Errorf("google account has no verified email: %w", ErrInvalidToken)
	}

	return &Profile{Provider: "google", Subject: info.Sub, Email: info.Email, Name: info.Name}, nil
}

func (c *APIClient) githubProfile(ctx context.Context, accessToken string) (*Profile, error) {
	user := new(githubUser)
	resp, err := c.github(ctx, accessToken).
		SetResult(user).
		Get(c.githubBaseURL + "/user")
	if err := checkResponse("github", resp, err); err != nil {
		return nil, err
	}

	email := user.Email
	if email == "" {
		// Private addresses are only listed by the emails endpoint.
		var emails []githubEmail
		resp, err := c.github(ctx, accessToken).
			SetResult(&emails).
			Get(c.githubBaseURL + "/user/emails")
		if err := checkResponse("github", resp, err); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return nil, fmt.Errorf("github account has no verified email: %w", ErrInvalidToken)
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return &Profile{Provider: "github", Subject: strconv.FormatInt(user.ID, 10), Email: email, Name: name}, nil
}

func (c *APIClient) github(ctx context.Context, accessToken string) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/vnd.github+json")
}

func checkResponse(provider string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("fetch %s profile: %w", provider, err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%s profile: %w", provider, ErrInvalidToken)
	case code >= http.StatusBadRequest:
		return fmt.Errorf("%s profile api error: status=%d", provider, code)
	}
	return nil
}
