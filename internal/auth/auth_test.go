package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bentswoodworking/bents-api/internal/auth"
)

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, err := auth.NewService("test-secret", time.Hour, nil)
	if err != nil {
		t.Fatalf("unexpected error creating auth service: %v", err)
	}

	registerResult, err := svc.Register(context.Background(), auth.RegisterInput{
		Username: "bent",
		Email:    "bent@example.com",
		Password: "dovetail",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	if registerResult.Token == "" {
		t.Fatalf("expected token on registration")
	}
	if registerResult.User.PasswordHash != "" {
		t.Fatalf("expected password hash stripped from result")
	}

	claims, err := svc.VerifyToken(registerResult.Token)
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if claims.Subject != registerResult.User.ID {
		t.Fatalf("expected token subject %s, got %s", registerResult.User.ID, claims.Subject)
	}

	if _, err := svc.Register(context.Background(), auth.RegisterInput{
		Username: "BENT",
		Email:    "other@example.com",
		Password: "another!",
	}); !errors.Is(err, auth.ErrUserExists) {
		t.Fatalf("expected duplicate username error, got %v", err)
	}

	if _, err := svc.Register(context.Background(), auth.RegisterInput{
		Username: "someone",
		Email:    " Bent@Example.com ",
		Password: "another!",
	}); !errors.Is(err, auth.ErrEmailExists) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	loginResult, err := svc.Login(context.Background(), auth.LoginInput{
		Identifier: "bent@example.com",
		Password:   "dovetail",
	})
	if err != nil {
		t.Fatalf("login by email returned error: %v", err)
	}
	if loginResult.User.Username != "bent" {
		t.Fatalf("expected login user to be bent, got %s", loginResult.User.Username)
	}

	if _, err := svc.Login(context.Background(), auth.LoginInput{
		Identifier: "bent",
		Password:   "wrong",
	}); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}

	if _, err := svc.Login(context.Background(), auth.LoginInput{
		Identifier: "nobody",
		Password:   "dovetail",
	}); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected unknown user to map to invalid credentials, got %v", err)
	}
}

func TestAuthServiceValidation(t *testing.T) {
	if _, err := auth.NewService("  ", time.Hour, nil); !errors.Is(err, auth.ErrSecretRequired) {
		t.Fatalf("expected secret required error, got %v", err)
	}

	svc, err := auth.NewService("test-secret", time.Hour, nil)
	if err != nil {
		t.Fatalf("unexpected error creating auth service: %v", err)
	}

	if _, err := svc.Register(context.Background(), auth.RegisterInput{Username: " ", Password: "dovetail"}); !errors.Is(err, auth.ErrUsernameRequired) {
		t.Fatalf("expected username required, got %v", err)
	}
	if _, err := svc.Register(context.Background(), auth.RegisterInput{Username: "bent", Password: "short"}); !errors.Is(err, auth.ErrPasswordTooWeak) {
		t.Fatalf("expected weak password error, got %v", err)
	}
}

func TestVerifyTokenRejectsForeignSecret(t *testing.T) {
	issuer, _ := auth.NewService("secret-a", time.Hour, nil)
	verifier, _ := auth.NewService("secret-b", time.Hour, nil)

	result, err := issuer.Register(context.Background(), auth.RegisterInput{Username: "bent", Password: "dovetail"})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	if _, err := verifier.VerifyToken(result.Token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestUsersStripsPasswordHashes(t *testing.T) {
	svc, _ := auth.NewService("test-secret", time.Hour, nil)
	for _, name := range []string{"first", "second"} {
		if _, err := svc.Register(context.Background(), auth.RegisterInput{Username: name, Password: "dovetail"}); err != nil {
			t.Fatalf("register %s failed: %v", name, err)
		}
	}

	users, err := svc.Users(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, user := range users {
		if user.PasswordHash != "" {
			t.Fatalf("expected hash stripped for %s", user.Username)
		}
	}
}
