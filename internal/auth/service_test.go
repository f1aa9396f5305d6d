package auth

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/thescentlab/scentlab-backend/pkg/auth"
	"github.com/thescentlab/scentlab-backend/pkg/auth/session"
	"github.com/thescentlab/scentlab-backend/pkg/config"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "scentlab",
	ExpirationMinutes: 30,
}

func TestServiceRegister(t *testing.T) {
	svc, repo, _ := buildTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "  New.Nose@Example.com ",
		Password:    "orange-blossom",
		DisplayName: "New Nose",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if resp.User.Email != "new.nose@example.com" {
		t.Fatalf("expected normalized email, got %s", resp.User.Email)
	}
	if resp.User.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", resp.User.Role)
	}
	for accord, value := range resp.User.Preferences {
		if value != 50 {
			t.Fatalf("expected neutral preference for %s, got %d", accord, value)
		}
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role claim, got %s", claims.Role)
	}

	stored := repo.byEmail["new.nose@example.com"]
	if stored == nil {
		t.Fatalf("expected user to be persisted")
	}
	if stored.PasswordHash == "orange-blossom" {
		t.Fatalf("password must not be stored in plaintext")
	}
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	repo.createErr = gorm.ErrDuplicatedKey

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "taken@example.com",
		Password:    "orange-blossom",
		DisplayName: "Taken",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceRegisterShortPassword(t *testing.T) {
	svc, _, _ := buildTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "short@example.com",
		Password:    "short",
		DisplayName: "Short",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceLogin(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	password := "orange-blossom"
	user := seedUser(t, repo, "nose@example.com", password, true)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Nose@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if resp.User.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, resp.User.ID)
	}
	if resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be set")
	}
}

func TestServiceLoginWrongPassword(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	seedUser(t, repo, "nose@example.com", "orange-blossom", true)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nose@example.com",
		Password: "wrong-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginInactiveUser(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	seedUser(t, repo, "dormant@example.com", "orange-blossom", false)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "dormant@example.com",
		Password: "orange-blossom",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc, _, _ := buildTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "orange-blossom",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	svc, repo, sessions := buildTestService(t)
	password := "orange-blossom"
	seedUser(t, repo, "nose@example.com", password, true)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nose@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatalf("expected refresh token to rotate")
	}

	oldClaims, err := pkgauth.ParseAccessToken(testJWTConfig, login.AccessToken)
	if err != nil {
		t.Fatalf("parse old token: %v", err)
	}
	if _, ok := sessions.tokens[oldClaims.ID]; ok {
		t.Fatalf("expected old session to be invalidated")
	}

	// The rotated refresh token must not be reusable against the old jti.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRefreshBadToken(t *testing.T) {
	svc, _, _ := buildTestService(t)

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLogout(t *testing.T) {
	svc, repo, sessions := buildTestService(t)
	password := "orange-blossom"
	seedUser(t, repo, "nose@example.com", password, true)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nose@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, login.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.tokens[claims.ID]; ok {
		t.Fatalf("expected session to be revoked")
	}
}

func buildTestService(t *testing.T) (Service, *stubUserRepo, *stubSessionManager) {
	t.Helper()

	repo := &stubUserRepo{byEmail: map[string]*models.User{}}
	sessions := &stubSessionManager{tokens: map[string]string{}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
		PasswordConfig: config.PasswordConfig{},
		Logger:         logg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessions
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, active bool) *models.User {
	t.Helper()

	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Seeded User",
		Role:         enums.UserRoleCustomer,
		Preferences:  models.DefaultScentProfile(),
		IsActive:     active,
	}
	repo.byEmail[email] = user
	return user
}

type stubUserRepo struct {
	byEmail   map[string]*models.User
	createErr error
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.byEmail[strings.ToLower(user.Email)] = user
	return nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, user := range s.byEmail {
		if user.ID == id {
			user.LastLoginAt = &at
		}
	}
	return nil
}

type stubSessionManager struct {
	tokens map[string]string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := uuid.NewString()
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newAccessID := session.NewAccessID()
	token, err := s.Generate(ctx, newAccessID)
	if err != nil {
		return "", "", err
	}
	return newAccessID, token, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.tokens, accessID)
	return nil
}
