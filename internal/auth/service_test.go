package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

var errAuth = errors.New("auth test error")

func TestSignupAndLogin(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now().Add(-time.Minute)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "leo@example.com", "leo", pgxmock.AnyArg(), "Leo Tolstoy").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	user, tokens, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "leo@example.com",
		Username: "leo",
		Password: "password123",
		FullName: "Leo Tolstoy",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.ID == "" || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected user and tokens")
	}

	mock.ExpectQuery(`SELECT id, email, username, password_hash, full_name, created_at`).
		WithArgs("leo").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "password_hash", "full_name", "created_at"}).
			AddRow(user.ID, user.Email, user.Username, user.PasswordHash, user.FullName, createdAt))

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	loggedIn, loginTokens, err := svc.Login(context.Background(), LoginRequest{Username: "leo", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID || loginTokens.AccessToken == "" {
		t.Fatalf("expected matching user and fresh tokens")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignupMissingFields(t *testing.T) {
	svc := NewService("test-secret", nil)
	_, _, err := svc.Signup(context.Background(), SignupRequest{Username: "leo"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, email, username, password_hash, full_name, created_at`).
		WithArgs("leo").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "password_hash", "full_name", "created_at"}).
			AddRow("user-1", "leo@example.com", "leo", string(hash), "Leo", time.Now()))

	svc := NewService("test-secret", mock)
	_, _, err = svc.Login(context.Background(), LoginRequest{Username: "leo", Password: "wrong"})
	if err == nil {
		t.Fatalf("expected invalid credentials")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, email, username, password_hash, full_name, created_at`).
		WithArgs("ghost").
		WillReturnError(errAuth)

	svc := NewService("test-secret", mock)
	_, _, err = svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateAccessToken(t *testing.T) {
	svc := NewService("test-secret", nil)
	token, err := svc.signToken("user-1", "leo", accessTokenTTL)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "leo" {
		t.Fatalf("unexpected claims")
	}

	if _, err := svc.ValidateAccessToken("garbage"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateRefreshToken(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService("test-secret", mock)
	token, _ := svc.signToken("user-1", "leo", refreshTokenTTL)

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(token).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-1", time.Now().Add(time.Hour)))

	claims, err := svc.ValidateRefreshToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected claims")
	}

	// expired in storage
	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(token).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-1", time.Now().Add(-time.Hour)))

	if _, err := svc.ValidateRefreshToken(context.Background(), token); err == nil {
		t.Fatalf("expected expired refresh token error")
	}
}
