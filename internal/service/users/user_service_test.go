package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/repository"
	"github.com/mamadbah2/billing/internal/repository/memory"
	"github.com/mamadbah2/billing/pkg/clients/oauth"
)

type stubProfiles struct {
	profile *oauth.Profile
	err     error
}

func (s stubProfiles) Profile(context.Context, string, string) (*oauth.Profile, error) {
	return s.profile, s.err
}

func newTestService(profiles oauth.Client) (*Service, *repository.Store) {
	store := memory.NewStore(time.UTC)
	return NewService(store.Users, NewTokens("test-secret", time.Hour), profiles, nil), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Kamal", Email: " Kamal@Example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if session.User.Email != "kamal@example.com" || session.User.PasswordHash == "secret1" {
		t.Fatalf("unexpected user %+v", session.User)
	}

	ownerID, err := svc.Authenticate(session.Token)
	if err != nil || ownerID != session.User.ID {
		t.Fatalf("token should authenticate as the new user: id=%q err=%v", ownerID, err)
	}

	if _, err := svc.Register(ctx, RegisterInput{Name: "Dup", Email: "kamal@example.com", Password: "secret1"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate email should conflict, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Name: "Short", Email: "s@example.com", Password: "123"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("short password should fail validation, got %v", err)
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "KAMAL@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "kamal@example.com", Password: "wrong"}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("wrong password should be unauthorized, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("unknown email should be unauthorized, got %v", err)
	}
}

func TestInactiveAccountsAreRejected(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Ruwan", Email: "ruwan@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	disabled := *session.User
	disabled.ID = ""
	disabled.Email = "disabled@example.com"
	disabled.Active = false
	if err := store.Users.Create(ctx, &disabled); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "disabled@example.com", Password: "secret1"}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("inactive login should be unauthorized, got %v", err)
	}
	if _, err := svc.Me(ctx, disabled.ID); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("inactive me should be unauthorized, got %v", err)
	}
	if me, err := svc.Me(ctx, session.User.ID); err != nil || me.Email != "ruwan@example.com" {
		t.Fatalf("Me: %+v %v", me, err)
	}
}

func TestOAuthLoginProvisionsOnce(t *testing.T) {
	svc, _ := newTestService(stubProfiles{profile: &oauth.Profile{Provider: "github", Email: "Dev@Example.com", Name: "Dev"}})
	ctx := context.Background()

	first, err := svc.OAuthLogin(ctx, OAuthInput{Provider: "github", AccessToken: "tok"})
	if err != nil {
		t.Fatalf("OAuthLogin: %v", err)
	}
	if !first.User.OAuth || first.User.OAuthProvider != "github" || first.User.PasswordHash != "" {
		t.Fatalf("unexpected oauth user %+v", first.User)
	}

	second, err := svc.OAuthLogin(ctx, OAuthInput{Provider: "github", AccessToken: "tok"})
	if err != nil {
		t.Fatal(err)
	}
	if second.User.ID != first.User.ID {
		t.Fatal("second login should reuse the account")
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "dev@example.com", Password: "anything"}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("oauth accounts have no password, got %v", err)
	}
	if _, err := svc.OAuthLogin(ctx, OAuthInput{Provider: "myspace", AccessToken: "tok"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("unknown provider should fail validation, got %v", err)
	}
}

func TestOAuthLoginRejectsBadToken(t *testing.T) {
	svc, _ := newTestService(stubProfiles{err: oauth.ErrInvalidToken})

	_, err := svc.OAuthLogin(context.Background(), OAuthInput{Provider: "google", AccessToken: "bad"})
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestTokensExpire(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issuedAt }

	svc, _ := newTestService(nil)
	session, err := svc.Register(context.Background(), RegisterInput{Name: "T", Email: "t@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := tokens.Issue(session.User)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tokens.Parse(raw); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	tokens.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := tokens.Parse(raw); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expired token should be unauthorized, got %v", err)
	}

	other := NewTokens("other-secret", time.Minute)
	other.now = func() time.Time { return issuedAt }
	if _, err := other.Parse(raw); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("token signed with another secret must be rejected, got %v", err)
	}
}
