package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "vestora/internal/errors"
	"vestora/internal/logger"
	"vestora/internal/models"
	"vestora/internal/store"
)

const (
	resetTokenTTL     = time.Hour
	minPasswordLength = 8
)

// userService handles user-related business logic.
type userService struct {
	db       *gorm.DB
	profiles store.ProfileStore
	resetKey *fernet.Key
}

// NewUserService creates a new UserServicer. profiles may be nil; a nil
// resetKey is replaced by a random one, so reset tokens do not survive a
// restart.
func NewUserService(db *gorm.DB, profiles store.ProfileStore, resetKey *fernet.Key) UserServicer {
	if resetKey == nil {
		resetKey = new(fernet.Key)
		if err := resetKey.Generate(); err != nil {
			logger.Get().Errorw("failed to generate password reset key", "error", err)
		}
	}
	return &userService{db: db, profiles: profiles, resetKey: resetKey}
}

// CreateUser registers a new user
func (s *userService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.createProfile(user)
	return user, nil
}

// createProfile seeds the profile row so the admin owner listing can see
// users before they record any asset. Failures are logged only.
func (s *userService) createProfile(user *models.User) {
	if s.profiles == nil {
		return
	}
	display := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if display == "" {
		display = user.Email
	}
	_, err := s.profiles.UpsertProfile(context.Background(), &models.Profile{
		UserID:      user.ID,
		DisplayName: display,
	})
	if err != nil {
		logger.Get().Warnw("failed to create profile", "user_id", user.ID, "error", err)
	}
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	if id == "" {
		return nil, apperrors.ErrUserNotFound
	}
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// FindEmails maps the given user ids to their emails. Unknown ids are absent.
func (s *userService) FindEmails(ids []string) (map[string]string, error) {
	emails := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return emails, nil
	}

	var users []models.User
	if err := s.db.Select("id", "email").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, u := range users {
		emails[u.ID] = u.Email
	}
	return emails, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks credentials and stamps the login time.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.VerifyPassword(user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.db.Model(user).Update("last_login_at", now).Error; err != nil {
		logger.Get().Warnw("failed to record login time", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	return user, nil
}

// StoreRefreshTokenHash saves the SHA-256 hash of the current refresh token.
func (s *userService) StoreRefreshTokenHash(userID, tokenHash string) error {
	return s.setRefreshHash(userID, tokenHash)
}

// GetRefreshTokenHash returns the stored refresh token hash.
func (s *userService) GetRefreshTokenHash(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// ClearRefreshTokenHash signs the user out of every refresh session.
func (s *userService) ClearRefreshTokenHash(userID string) error {
	return s.setRefreshHash(userID, "")
}

func (s *userService) setRefreshHash(userID, hash string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", hash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// RequestPasswordReset issues a reset token for the user with the given
// email. An unknown email yields an empty token and no error, so callers
// cannot probe for accounts.
func (s *userService) RequestPasswordReset(email string) (string, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}

	token, err := fernet.EncryptAndSign([]byte(user.ID+"|"+passwordFingerprint(user.Password)), s.resetKey)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return string(token), nil
}

// ConfirmPasswordReset sets a new password from a valid reset token. The
// token carries a fingerprint of the password hash it was issued for, so it
// stops working once the password changes.
func (s *userService) ConfirmPasswordReset(token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 8 characters")
	}

	msg := fernet.VerifyAndDecrypt([]byte(token), resetTokenTTL, []*fernet.Key{s.resetKey})
	if msg == nil {
		return apperrors.ErrInvalidResetToken
	}
	userID, fingerprint, ok := strings.Cut(string(msg), "|")
	if !ok {
		return apperrors.ErrInvalidResetToken
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return err
	}
	if passwordFingerprint(user.Password) != fingerprint {
		return apperrors.ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(user).Updates(map[string]interface{}{
		"password":           string(hashed),
		"refresh_token_hash": "",
	}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
