package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/you/hostelauth/domain"
	"github.com/you/hostelauth/internal/infrastructure/notifications"
)

// maxUnverifiedSiblings caps how many unverified registrations may coexist
// for one email before further attempts are rejected.
const maxUnverifiedSiblings = 5

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	accountRepo domain.AccountRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	otpSvc      domain.OTPService
	resetSvc    domain.ResetTokenService
	mailer      domain.Mailer
	rules       domain.ValidationRules
	frontendURL string
	logger      *logrus.Logger
}

// NewAuthService creates a new auth workflow service.
func NewAuthService(
	accountRepo domain.AccountRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	resetSvc domain.ResetTokenService,
	mailer domain.Mailer,
	rules domain.ValidationRules,
	frontendURL string,
	logger *logrus.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		otpSvc:      otpSvc,
		resetSvc:    resetSvc,
		mailer:      mailer,
		rules:       rules,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// Register implements domain.AuthService. A failed verification email does
// not roll back the account: retry happens through re-registration, bounded
// by the unverified-sibling cap.
func (s *AuthServiceImpl) Register(ctx context.Context, input domain.RegisterInput) (*domain.RegisterResult, error) {
	input.Email = domain.NormalizeEmail(input.Email)

	if ve := domain.ValidateRegistration(input, s.rules); ve != nil {
		return nil, ve
	}

	existing, err := s.accountRepo.FindVerifiedByEmail(ctx, input.Email, false)
	if err != nil && err != domain.ErrAccountNotFound {
		return nil, fmt.Errorf("failed to look up verified account: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrAccountExists
	}

	// Count-then-create is racy on its own; the partial unique index on
	// verified emails is the hard backstop.
	count, err := s.accountRepo.CountUnverifiedByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to count unverified accounts: %w", err)
	}
	if count >= maxUnverifiedSiblings {
		return nil, domain.ErrTooManyAttempts
	}

	if !domain.PasswordLengthOK(input.Password) {
		ve := &domain.ValidationError{}
		ve.Add("password", fmt.Sprintf("must be between %d and %d characters", domain.MinPasswordLen, domain.MaxPasswordLen))
		return nil, ve
	}

	hashedPassword, err := s.passwordSvc.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, expiresAt, err := s.otpSvc.Issue()
	if err != nil {
		return nil, fmt.Errorf("failed to issue verification code: %w", err)
	}

	account := &domain.Account{
		Name:                   input.Name,
		Email:                  input.Email,
		PasswordHash:           hashedPassword,
		Role:                   domain.RoleUser,
		ContactNumber:          input.ContactNumber,
		GuardianContact:        input.GuardianContact,
		Hostel:                 input.Hostel,
		RoomNumber:             input.RoomNumber,
		Department:             input.Department,
		Semester:               input.Semester,
		Gender:                 input.Gender,
		AccountVerified:        false,
		IsActive:               true,
		VerificationCode:       code,
		VerificationCodeExpire: &expiresAt,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	result := &domain.RegisterResult{Account: account, MailDispatched: true}

	body := notifications.VerificationEmailBody(code)
	if err := s.mailer.Send(account.Email, notifications.VerificationSubject, body); err != nil {
		s.logger.WithFields(logrus.Fields{
			"email": account.Email,
			"error": err.Error(),
		}).Warn("verification email dispatch failed; account kept")
		result.MailDispatched = false
	}

	return result, nil
}

// VerifyOTP implements domain.AuthService. The newest unverified sibling is
// canonical; all others for the email are pruned before the code is
// checked, so a stale sibling's code can never win.
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, email, otp string) (*domain.AuthResult, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(otp) == "" {
		return nil, domain.ErrMissingFields
	}
	email = domain.NormalizeEmail(email)

	siblings, err := s.accountRepo.FindUnverifiedByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load unverified accounts: %w", err)
	}
	if len(siblings) == 0 {
		return nil, domain.ErrAccountNotFound
	}

	account := siblings[0]
	if len(siblings) > 1 {
		if err := s.accountRepo.DeleteUnverifiedExcept(ctx, email, account.ID); err != nil {
			return nil, fmt.Errorf("failed to prune unverified duplicates: %w", err)
		}
	}

	if err := s.otpSvc.Check(account.VerificationCode, otp, account.VerificationCodeExpire, time.Now()); err != nil {
		return nil, err
	}

	if err := s.accountRepo.MarkVerified(ctx, account.ID); err != nil {
		return nil, err
	}

	account.AccountVerified = true
	account.VerificationCode = 0
	account.VerificationCodeExpire = nil
	account.PasswordHash = ""

	s.logger.WithFields(logrus.Fields{
		"account_id": account.ID.Hex(),
		"email":      account.Email,
	}).Info("account verified")

	return s.authResult(account)
}

// Login implements domain.AuthService. An unknown email and a wrong
// password produce the same error so the response never reveals which
// check failed.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.ErrMissingFields
	}
	email = domain.NormalizeEmail(email)

	account, err := s.accountRepo.FindVerifiedByEmail(ctx, email, true)
	if err == domain.ErrAccountNotFound {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !s.passwordSvc.Verify(account.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	account.PasswordHash = ""
	return s.authResult(account)
}

// GetProfile implements domain.AuthService
func (s *AuthServiceImpl) GetProfile(ctx context.Context, accountID string) (*domain.Account, error) {
	id, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return s.accountRepo.FindByID(ctx, id, false)
}

// ForgotPassword implements domain.AuthService. When the email cannot be
// dispatched the freshly issued token is rolled back so a valid-looking
// token never outlives a failed notification.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return domain.ErrMissingFields
	}
	email = domain.NormalizeEmail(email)

	account, err := s.accountRepo.FindVerifiedByEmail(ctx, email, false)
	if err == domain.ErrAccountNotFound {
		return domain.ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}

	plaintext, hash, expiresAt, err := s.resetSvc.Issue()
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	if err := s.accountRepo.SetResetToken(ctx, account.ID, hash, expiresAt); err != nil {
		return fmt.Errorf("failed to persist reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/password/reset/%s", s.frontendURL, plaintext)
	body := notifications.PasswordResetEmailBody(resetURL)

	if err := s.mailer.Send(account.Email, notifications.PasswordResetSubject, body); err != nil {
		if clearErr := s.accountRepo.ClearResetToken(ctx, account.ID); clearErr != nil {
			s.logger.WithFields(logrus.Fields{
				"account_id": account.ID.Hex(),
				"error":      clearErr.Error(),
			}).Error("failed to roll back reset token after mail failure")
		}
		return domain.ErrEmailSend
	}

	return nil
}

// ResetPassword implements domain.AuthService
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, password, confirmPassword string) (*domain.AuthResult, error) {
	hash := s.resetSvc.HashToken(token)

	account, err := s.accountRepo.FindByResetTokenHash(ctx, hash, time.Now())
	if err == domain.ErrAccountNotFound {
		return nil, domain.ErrResetTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	if ve := validatePasswordPair(password, confirmPassword); ve != nil {
		return nil, ve
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePassword(ctx, account.ID, hashedPassword); err != nil {
		return nil, err
	}

	account.PasswordHash = ""
	account.ResetPasswordToken = ""
	account.ResetPasswordExpire = nil

	s.logger.WithField("account_id", account.ID.Hex()).Info("password reset completed")

	return s.authResult(account)
}

// UpdatePassword implements domain.AuthService
func (s *AuthServiceImpl) UpdatePassword(ctx context.Context, accountID, currentPassword, newPassword, confirmNewPassword string) error {
	if currentPassword == "" || newPassword == "" || confirmNewPassword == "" {
		return domain.ErrMissingFields
	}

	id, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	account, err := s.accountRepo.FindByID(ctx, id, true)
	if err != nil {
		return err
	}

	if !s.passwordSvc.Verify(account.PasswordHash, currentPassword) {
		return domain.ErrInvalidCredentials
	}

	if ve := validatePasswordPair(newPassword, confirmNewPassword); ve != nil {
		return ve
	}

	hashedPassword, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.accountRepo.UpdatePassword(ctx, id, hashedPassword)
}

func (s *AuthServiceImpl) authResult(account *domain.Account) (*domain.AuthResult, error) {
	token, err := s.tokenSvc.GenerateSessionToken(account.ID.Hex(), account.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	return &domain.AuthResult{
		Account:   account,
		Token:     token,
		ExpiresIn: int64(s.tokenSvc.TTL().Seconds()),
	}, nil
}

func validatePasswordPair(password, confirm string) *domain.ValidationError {
	ve := &domain.ValidationError{}
	if !domain.PasswordLengthOK(password) || !domain.PasswordLengthOK(confirm) {
		ve.Add("password", fmt.Sprintf("must be between %d and %d characters", domain.MinPasswordLen, domain.MaxPasswordLen))
	}
	if password != confirm {
		ve.Add("confirmPassword", "password and confirm password do not match")
	}
	if ve.HasViolations() {
		return ve
	}
	return nil
}
