package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/internal/app/repository"
	"github.com/prasetyo/tokobarang-backend/pkg/logger"
	"github.com/prasetyo/tokobarang-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetToken = errors.New("invalid reset token")
	ErrResetTokenExpired = errors.New("reset token has expired")
	ErrResetTokenUsed    = errors.New("reset token has already been used")
)

const (
	// ResetTokenExpiry is the duration for which a reset token is valid
	ResetTokenExpiry = 1 * time.Hour
	// ResetTokenLength is the byte length of the reset token
	ResetTokenLength = 32
)

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(token, newPassword string) error
	PurgeExpired() (int64, error)
}

type passwordResetService struct {
	resetRepo    repository.PasswordResetRepository
	userRepo     repository.UserRepository
	notification NotificationService
	baseURL      string
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	notification NotificationService,
	baseURL string,
) PasswordResetService {
	return &passwordResetService{
		resetRepo:    resetRepo,
		userRepo:     userRepo,
		notification: notification,
		baseURL:      baseURL,
	}
}

func (s *passwordResetService) RequestReset(email string) error {
	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Answer the same way for unknown addresses to prevent
			// user enumeration
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		logger.Error("Failed to generate reset token", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	reset := &model.PasswordReset{
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(ResetTokenExpiry),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		return err
	}

	if s.notification != nil {
		resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
		s.notification.SendPasswordReset(user.Email, resetURL)
	}

	logger.Info("Password reset token issued", map[string]interface{}{
		"email":      email,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	reset, err := s.resetRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset attempted with unknown token", nil)
			return ErrInvalidResetToken
		}
		return err
	}

	if reset.Used {
		logger.Warn("Password reset attempted with used token", map[string]interface{}{
			"email": reset.Email,
		})
		return ErrResetTokenUsed
	}
	if time.Now().After(reset.ExpiresAt) {
		logger.Warn("Password reset attempted with expired token", map[string]interface{}{
			"email": reset.Email,
		})
		return ErrResetTokenExpired
	}

	user, err := s.userRepo.FindByEmail(reset.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	if err := s.resetRepo.MarkUsed(reset.ID); err != nil {
		return err
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

// PurgeExpired removes stale reset tokens. Wired to the cleanup scheduler.
func (s *passwordResetService) PurgeExpired() (int64, error) {
	removed, err := s.resetRepo.DeleteExpired(time.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logger.Info("Purged stale password reset tokens", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed, nil
}

func generateResetToken() (string, error) {
	bytes := make([]byte, ResetTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
