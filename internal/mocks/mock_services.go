package mocks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/you/hostelauth/domain"
)

// MockPasswordService implements domain.PasswordService for testing
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool
}

func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	// Default behavior: reversible marker hash
	return "hashed_" + password, nil
}

func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	return hashedPassword == "hashed_"+password
}

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	GenerateSessionTokenFunc func(accountID, role string) (string, error)
	ValidateSessionTokenFunc func(token string) (*domain.TokenClaims, error)
	TTLFunc                  func() time.Duration
}

func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) GenerateSessionToken(accountID, role string) (string, error) {
	if m.GenerateSessionTokenFunc != nil {
		return m.GenerateSessionTokenFunc(accountID, role)
	}
	return "session_" + accountID, nil
}

func (m *MockTokenService) ValidateSessionToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateSessionTokenFunc != nil {
		return m.ValidateSessionTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) TTL() time.Duration {
	if m.TTLFunc != nil {
		return m.TTLFunc()
	}
	return 72 * time.Hour
}

// MockOTPService implements domain.OTPService for testing
type MockOTPService struct {
	IssueFunc func() (int, time.Time, error)
	CheckFunc func(stored int, supplied string, expiresAt *time.Time, now time.Time) error
}

func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

func (m *MockOTPService) Issue() (int, time.Time, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc()
	}
	return 12345, time.Now().Add(15 * time.Minute), nil
}

func (m *MockOTPService) Check(stored int, supplied string, expiresAt *time.Time, now time.Time) error {
	if m.CheckFunc != nil {
		return m.CheckFunc(stored, supplied, expiresAt, now)
	}
	return nil
}

// MockResetTokenService implements domain.ResetTokenService for testing
type MockResetTokenService struct {
	IssueFunc     func() (string, string, time.Time, error)
	HashTokenFunc func(plaintext string) string
}

func NewMockResetTokenService() *MockResetTokenService {
	return &MockResetTokenService{}
}

func (m *MockResetTokenService) Issue() (string, string, time.Time, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc()
	}
	return "plain-token", m.HashToken("plain-token"), time.Now().Add(15 * time.Minute), nil
}

func (m *MockResetTokenService) HashToken(plaintext string) string {
	if m.HashTokenFunc != nil {
		return m.HashTokenFunc(plaintext)
	}
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// MockMailer implements domain.Mailer for testing
type MockMailer struct {
	SendFunc func(to, subject, body string) error
	Sent     []SentMail
}

// SentMail records one dispatched message.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(to, subject, body string) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(to, subject, body); err != nil {
			return err
		}
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// MockAuthService implements domain.AuthService for handler tests
type MockAuthService struct {
	RegisterFunc       func(ctx context.Context, input domain.RegisterInput) (*domain.RegisterResult, error)
	VerifyOTPFunc      func(ctx context.Context, email, otp string) (*domain.AuthResult, error)
	LoginFunc          func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	GetProfileFunc     func(ctx context.Context, accountID string) (*domain.Account, error)
	ForgotPasswordFunc func(ctx context.Context, email string) error
	ResetPasswordFunc  func(ctx context.Context, token, password, confirmPassword string) (*domain.AuthResult, error)
	UpdatePasswordFunc func(ctx context.Context, accountID, currentPassword, newPassword, confirmNewPassword string) error
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, input domain.RegisterInput) (*domain.RegisterResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	return &domain.RegisterResult{Account: &domain.Account{}, MailDispatched: true}, nil
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email, otp string) (*domain.AuthResult, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, otp)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) GetProfile(ctx context.Context, accountID string) (*domain.Account, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, accountID)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, password, confirmPassword string) (*domain.AuthResult, error) {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, password, confirmPassword)
	}
	return nil, domain.ErrResetTokenInvalid
}

func (m *MockAuthService) UpdatePassword(ctx context.Context, accountID, currentPassword, newPassword, confirmNewPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, accountID, currentPassword, newPassword, confirmNewPassword)
	}
	return nil
}

// Compile-time interface compliance verification
var (
	_ domain.PasswordService   = (*MockPasswordService)(nil)
	_ domain.TokenService      = (*MockTokenService)(nil)
	_ domain.OTPService        = (*MockOTPService)(nil)
	_ domain.ResetTokenService = (*MockResetTokenService)(nil)
	_ domain.Mailer            = (*MockMailer)(nil)
	_ domain.AuthService       = (*MockAuthService)(nil)
)
