package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"reno-market/internal/apperr"
	"reno-market/internal/auth"
	"reno-market/internal/models"
	"reno-market/internal/utils"
)

const refreshTokenBytes = 32

// AuthService handles registration, login and token rotation
type AuthService struct {
	db              *gorm.DB
	refreshTokenTTL time.Duration
	audit           *AuditService
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB, refreshTokenTTL time.Duration, audit *AuditService) *AuthService {
	return &AuthService{db: db, refreshTokenTTL: refreshTokenTTL, audit: audit}
}

// Register creates an account. A PRO registration also creates the empty
// professional profile that proposals will hang off.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, *models.TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.UserRole(req.Role),
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("email is already registered")
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if user.Role == models.RolePro {
			pro := models.Pro{UserID: user.ID}
			if err := tx.Create(&pro).Error; err != nil {
				return fmt.Errorf("failed to create pro profile: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, &user)
	if err != nil {
		return nil, nil, err
	}

	s.audit.Record(ctx, user.ID, "REGISTER", "User", fmt.Sprint(user.ID), map[string]interface{}{"role": user.Role})
	log.Printf("New user registered: %s (ID: %d, role: %s)", user.Email, user.ID, user.Role)

	return &user, tokens, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, *models.TokenPair, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apperr.PermissionDenied("invalid email or password")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if !user.IsActive {
		return nil, nil, apperr.PermissionDenied("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, apperr.PermissionDenied("invalid email or password")
	}

	tokens, err := s.issueTokens(ctx, &user)
	if err != nil {
		return nil, nil, err
	}

	return &user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new pair, revoking the old one
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	var stored models.RefreshToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", utils.HashToken(refreshToken), time.Now()).
		First(&stored).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.PermissionDenied("invalid or expired refresh token")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, apperr.PermissionDenied("account is deactivated")
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&stored).Update("revoked_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return s.issueTokens(ctx, &user)
}

// Logout revokes all live refresh tokens for the user
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	now := time.Now()
	if err := s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error; err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := utils.GenerateOpaqueToken(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	stored := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: utils.HashToken(refresh),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}
	if err := s.db.WithContext(ctx).Create(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
