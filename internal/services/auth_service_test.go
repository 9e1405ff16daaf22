package services

import (
	"context"
	"testing"
	"time"

	"reno-market/internal/apperr"
	"reno-market/internal/auth"
	"reno-market/internal/models"
)

func newAuthService(t *testing.T) *AuthService {
	db := setupTestDB(t)
	auth.InitJWT("test-secret", time.Hour)
	return NewAuthService(db, 24*time.Hour, NewAuditService(db))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, &models.RegisterRequest{
		Email:     "ana@example.com",
		Password:  "hunter2hunter2",
		FirstName: "Ana",
		LastName:  "Gomez",
		Role:      "CLIENT",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != models.RoleClient {
		t.Errorf("expected CLIENT role, got %s", user.Role)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected a full token pair")
	}

	claims, err := auth.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("access token does not validate: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("expected claims for user %d, got %d", user.ID, claims.UserID)
	}

	_, _, err = svc.Login(ctx, &models.LoginRequest{Email: "ana@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	_, _, err = svc.Login(ctx, &models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied for bad password, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	req := &models.RegisterRequest{
		Email:    "dup@example.com",
		Password: "hunter2hunter2",
		Role:     "CLIENT",
	}
	if _, _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, _, err := svc.Register(ctx, req)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict for duplicate email, got %v", err)
	}
}

func TestRegisterProCreatesProfile(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, &models.RegisterRequest{
		Email:    "pro@example.com",
		Password: "hunter2hunter2",
		Role:     "PRO",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	var pro models.Pro
	if err := svc.db.Where("user_id = ?", user.ID).First(&pro).Error; err != nil {
		t.Fatalf("expected a pro profile: %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, &models.RegisterRequest{
		Email:    "rot@example.com",
		Password: "hunter2hunter2",
		Role:     "CLIENT",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	fresh, err := svc.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if fresh.RefreshToken == tokens.RefreshToken {
		t.Error("expected a rotated refresh token")
	}

	// The old token was revoked by the rotation.
	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied reusing revoked token, got %v", err)
	}
}

func TestLogoutRevokesTokens(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, &models.RegisterRequest{
		Email:    "out@example.com",
		Password: "hunter2hunter2",
		Role:     "CLIENT",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.Logout(ctx, user.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied after logout, got %v", err)
	}
}
