package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atinyakov/TaskKeeper/internal/apperrors"
	"github.com/atinyakov/TaskKeeper/internal/auth"
	"github.com/atinyakov/TaskKeeper/internal/models"
	"github.com/atinyakov/TaskKeeper/internal/repository"
)

type mockUserRepo struct {
	CreateUserFunc         func(ctx context.Context, u *models.User) error
	FindUserByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	FindUserByIDFunc       func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.CreateUserFunc(ctx, u)
}
func (m *mockUserRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.FindUserByUsernameFunc(ctx, username)
}
func (m *mockUserRepo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.FindUserByIDFunc(ctx, id)
}

func storedUser(t *testing.T, id, username, password string) *models.User {
	t.Helper()
	salt, err := auth.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}
	return &models.User{ID: id, Username: username, Salt: salt, PasswordHash: auth.HashPassword(password, salt)}
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour)
}

func TestSignUp_Success(t *testing.T) {
	var saved *models.User
	repo := &mockUserRepo{
		CreateUserFunc: func(ctx context.Context, u *models.User) error {
			saved = u
			return nil
		},
	}
	svc := NewAuthService(repo, newTokens())

	if err := svc.SignUp(context.Background(), "carol", "pa55word"); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected CreateUser to be called on repo")
	}
	if saved.Username != "carol" || saved.ID == "" {
		t.Errorf("saved user = %+v", saved)
	}
	if len(saved.Salt) != auth.SaltSize {
		t.Errorf("salt length = %d; want %d", len(saved.Salt), auth.SaltSize)
	}
	if bytes.Contains(saved.PasswordHash, []byte("pa55word")) {
		t.Error("password stored in plaintext")
	}
	if !bytes.Equal(saved.PasswordHash, auth.HashPassword("pa55word", saved.Salt)) {
		t.Error("stored hash does not match HashPassword(password, salt)")
	}
}

func TestSignUp_Errors(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		want    error
	}{
		{"duplicate", repository.ErrDuplicate, apperrors.ErrConflict},
		{"other", errors.New("insert failed"), apperrors.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{
				CreateUserFunc: func(context.Context, *models.User) error { return tt.repoErr },
			}
			err := NewAuthService(repo, newTokens()).SignUp(context.Background(), "dave", "password1")
			if !errors.Is(err, tt.want) {
				t.Fatalf("SignUp error = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	alice := storedUser(t, "u1", "alice", "rightpass")
	repo := &mockUserRepo{
		FindUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			if username == "alice" {
				return alice, nil
			}
			return nil, repository.ErrNotFound
		},
	}
	svc := NewAuthService(repo, newTokens())

	got, err := svc.ValidateCredentials(context.Background(), "alice", "rightpass")
	if err != nil || got == nil || got.ID != "u1" {
		t.Fatalf("ValidateCredentials = %+v, %v; want alice", got, err)
	}

	for _, tc := range []struct{ user, pass string }{
		{"alice", "wrongpass"},
		{"nobody", "rightpass"},
	} {
		got, err := svc.ValidateCredentials(context.Background(), tc.user, tc.pass)
		if err != nil || got != nil {
			t.Errorf("ValidateCredentials(%q, %q) = %+v, %v; want nil, nil", tc.user, tc.pass, got, err)
		}
	}
}

func TestValidateCredentials_LookupError(t *testing.T) {
	repo := &mockUserRepo{
		FindUserByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return nil, errors.New("db down")
		},
	}
	_, err := NewAuthService(repo, newTokens()).ValidateCredentials(context.Background(), "alice", "x")
	if !errors.Is(err, apperrors.ErrInternal) {
		t.Fatalf("error = %v; want ErrInternal", err)
	}
}

func TestSignIn(t *testing.T) {
	alice := storedUser(t, "u1", "alice", "rightpass")
	repo := &mockUserRepo{
		FindUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			if username == "alice" {
				return alice, nil
			}
			return nil, repository.ErrNotFound
		},
	}
	tokens := newTokens()
	svc := NewAuthService(repo, tokens)

	token, err := svc.SignIn(context.Background(), "alice", "rightpass")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}

	_, errWrong := svc.SignIn(context.Background(), "alice", "nope")
	_, errUnknown := svc.SignIn(context.Background(), "bob", "rightpass")
	if !errors.Is(errWrong, apperrors.ErrUnauthorized) || !errors.Is(errUnknown, apperrors.ErrUnauthorized) {
		t.Fatalf("errors = %v, %v; want ErrUnauthorized", errWrong, errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Errorf("wrong password and unknown user must be indistinguishable: %q vs %q", errWrong, errUnknown)
	}
}

func TestSignIn_SigningFailure(t *testing.T) {
	alice := storedUser(t, "u1", "alice", "rightpass")
	repo := &mockUserRepo{
		FindUserByUsernameFunc: func(context.Context, string) (*models.User, error) { return alice, nil },
	}
	svc := NewAuthService(repo, auth.NewTokenManager("", time.Hour))

	_, err := svc.SignIn(context.Background(), "alice", "rightpass")
	if !errors.Is(err, apperrors.ErrInternal) {
		t.Fatalf("error = %v; want ErrInternal", err)
	}
}

func TestVerify(t *testing.T) {
	tokens := newTokens()
	token, err := tokens.Issue("u1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		lookup  func(context.Context, string) (*models.User, error)
		wantErr error
	}{
		{
			name:  "valid",
			token: token,
			lookup: func(_ context.Context, id string) (*models.User, error) {
				return &models.User{ID: id, Username: "alice"}, nil
			},
		},
		{
			name:    "tampered",
			token:   token + "x",
			wantErr: apperrors.ErrUnauthorized,
		},
		{
			name:  "user deleted",
			token: token,
			lookup: func(context.Context, string) (*models.User, error) {
				return nil, repository.ErrNotFound
			},
			wantErr: apperrors.ErrUnauthorized,
		},
		{
			name:  "user renamed",
			token: token,
			lookup: func(_ context.Context, id string) (*models.User, error) {
				return &models.User{ID: id, Username: "alicia"}, nil
			},
			wantErr: apperrors.ErrUnauthorized,
		},
		{
			name:  "lookup failure",
			token: token,
			lookup: func(context.Context, string) (*models.User, error) {
				return nil, errors.New("db down")
			},
			wantErr: apperrors.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{FindUserByIDFunc: tt.lookup}
			got, err := NewAuthService(repo, tokens).Verify(context.Background(), tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Verify error = %v; want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify returned error: %v", err)
			}
			if got.ID != "u1" || got.Username != "alice" {
				t.Errorf("Verify = %+v", got)
			}
		})
	}
}
