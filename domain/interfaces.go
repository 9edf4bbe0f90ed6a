package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountRepository defines account data access operations
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id primitive.ObjectID, withPassword bool) (*Account, error)
	FindVerifiedByEmail(ctx context.Context, email string, withPassword bool) (*Account, error)
	FindUnverifiedByEmail(ctx context.Context, email string) ([]*Account, error)
	CountUnverifiedByEmail(ctx context.Context, email string) (int64, error)
	DeleteUnverifiedExcept(ctx context.Context, email string, keepID primitive.ObjectID) error
	FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (*Account, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// AuthService defines authentication business logic
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	VerifyOTP(ctx context.Context, email, otp string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, accountID string) (*Account, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirmPassword string) (*AuthResult, error)
	UpdatePassword(ctx context.Context, accountID, currentPassword, newPassword, confirmNewPassword string) error
}

// PasswordService defines password hashing operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines session token operations
type TokenService interface {
	GenerateSessionToken(accountID, role string) (string, error)
	ValidateSessionToken(token string) (*TokenClaims, error)
	TTL() time.Duration
}

// OTPService defines one-time verification code operations
type OTPService interface {
	// Issue returns a fresh 5-digit code and its expiry instant.
	Issue() (code int, expiresAt time.Time, err error)
	// Check validates a supplied code against the stored one. Code
	// mismatch is reported before expiry.
	Check(stored int, supplied string, expiresAt *time.Time, now time.Time) error
}

// ResetTokenService defines password-reset token operations
type ResetTokenService interface {
	// Issue returns the plaintext token (embedded in the reset link and
	// never stored), the hash to persist, and the expiry instant.
	Issue() (plaintext, hash string, expiresAt time.Time, err error)
	// HashToken re-derives the stored hash from a supplied plaintext.
	HashToken(plaintext string) string
}

// Mailer defines outbound email dispatch
type Mailer interface {
	Send(to, subject, body string) error
}
