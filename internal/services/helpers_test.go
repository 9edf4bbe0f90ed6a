package services

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/you/hostelauth/domain"
	"github.com/you/hostelauth/internal/mocks"
)

func testValidationRules() domain.ValidationRules {
	return domain.ValidationRules{
		EmailDomain: "nitm.ac.in",
		Hostels:     domain.DefaultHostels,
	}
}

// createAuthServiceForTest builds an AuthService over the given mocks,
// defaulting any nil dependency.
func createAuthServiceForTest(t *testing.T,
	accountRepo domain.AccountRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	resetSvc domain.ResetTokenService,
	mailer domain.Mailer) domain.AuthService {
	t.Helper()

	if accountRepo == nil {
		accountRepo = mocks.NewMockAccountRepository()
	}
	if passwordSvc == nil {
		passwordSvc = mocks.NewMockPasswordService()
	}
	if tokenSvc == nil {
		tokenSvc = mocks.NewMockTokenService()
	}
	if otpSvc == nil {
		otpSvc = mocks.NewMockOTPService()
	}
	if resetSvc == nil {
		resetSvc = mocks.NewMockResetTokenService()
	}
	if mailer == nil {
		mailer = mocks.NewMockMailer()
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewAuthService(accountRepo, passwordSvc, tokenSvc, otpSvc, resetSvc, mailer,
		testValidationRules(), "http://localhost:3000", logger)
}

// createRegisterInput returns a registration payload that passes every
// validation rule.
func createRegisterInput(t *testing.T) domain.RegisterInput {
	t.Helper()

	return domain.RegisterInput{
		Name:            "Asha Rao",
		Email:           "asha@nitm.ac.in",
		Password:        "pw12345678",
		ContactNumber:   "9876543210",
		GuardianContact: "9876543211",
		Hostel:          "Girls Hostel",
		RoomNumber:      "B-204",
		Department:      "CSE",
		Semester:        "4",
		Gender:          domain.GenderFemale,
	}
}

// createVerifiedAccount returns a verified account carrying a password
// hash in the mock service's marker format.
func createVerifiedAccount(t *testing.T, email, password string) *domain.Account {
	t.Helper()

	return &domain.Account{
		ID:              primitive.NewObjectID(),
		Name:            "Asha Rao",
		Email:           email,
		PasswordHash:    "hashed_" + password,
		Role:            domain.RoleUser,
		AccountVerified: true,
		IsActive:        true,
		CreatedAt:       time.Now().Add(-24 * time.Hour),
		UpdatedAt:       time.Now().Add(-time.Hour),
	}
}

// createUnverifiedAccount returns an unverified account holding a live
// verification code.
func createUnverifiedAccount(t *testing.T, email string, code int, expiresAt time.Time) *domain.Account {
	t.Helper()

	return &domain.Account{
		ID:                     primitive.NewObjectID(),
		Name:                   "Asha Rao",
		Email:                  email,
		PasswordHash:           "hashed_pw12345678",
		Role:                   domain.RoleUser,
		AccountVerified:        false,
		IsActive:               true,
		VerificationCode:       code,
		VerificationCodeExpire: &expiresAt,
		CreatedAt:              time.Now(),
		UpdatedAt:              time.Now(),
	}
}
