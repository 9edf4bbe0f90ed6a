package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/you/hostelauth/domain"
	"github.com/you/hostelauth/internal/mocks"
)

func TestAuthServiceImpl_Register(t *testing.T) {
	tests := []struct {
		name           string
		mutateInput    func(*domain.RegisterInput)
		setupMocks     func(*mocks.MockAccountRepository, *mocks.MockMailer)
		expectedError  error
		wantValidation string // field name when a ValidationError is expected
		validateResult func(t *testing.T, result *domain.RegisterResult, repo *mocks.MockAccountRepository, mailer *mocks.MockMailer)
	}{
		{
			name:        "successful registration",
			mutateInput: func(in *domain.RegisterInput) {},
			setupMocks:  func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {},
			validateResult: func(t *testing.T, result *domain.RegisterResult, repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {
				if result.Account == nil {
					t.Fatal("account is nil")
				}
				if result.Account.AccountVerified {
					t.Error("fresh account must be unverified")
				}
				if !result.Account.IsActive {
					t.Error("fresh account must be active")
				}
				if result.Account.Role != domain.RoleUser {
					t.Errorf("role = %q, want default User", result.Account.Role)
				}
				if result.Account.VerificationCode == 0 || result.Account.VerificationCodeExpire == nil {
					t.Error("verification sub-state missing on created account")
				}
				if result.Account.PasswordHash != "hashed_pw12345678" {
					t.Errorf("password hash = %q", result.Account.PasswordHash)
				}
				if !result.MailDispatched {
					t.Error("expected mail to be dispatched")
				}
				if len(mailer.Sent) != 1 {
					t.Fatalf("expected 1 email, got %d", len(mailer.Sent))
				}
				if mailer.Sent[0].To != "asha@nitm.ac.in" {
					t.Errorf("email to = %q", mailer.Sent[0].To)
				}
			},
		},
		{
			name:        "email is normalized before everything",
			mutateInput: func(in *domain.RegisterInput) { in.Email = "Asha@NITM.AC.IN" },
			setupMocks:  func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {},
			validateResult: func(t *testing.T, result *domain.RegisterResult, repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {
				if result.Account.Email != "asha@nitm.ac.in" {
					t.Errorf("email = %q, want lowercased", result.Account.Email)
				}
			},
		},
		{
			name:           "non-institutional email fails validation regardless of other fields",
			mutateInput:    func(in *domain.RegisterInput) { in.Email = "asha@gmail.com" },
			setupMocks:     func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {},
			wantValidation: "email",
		},
		{
			name:           "missing required field",
			mutateInput:    func(in *domain.RegisterInput) { in.Hostel = "" },
			setupMocks:     func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {},
			wantValidation: "hostel",
		},
		{
			name:        "verified account already exists",
			mutateInput: func(in *domain.RegisterInput) {},
			setupMocks: func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {
				repo.FindVerifiedByEmailFunc = func(ctx context.Context, email string, withPassword bool) (*domain.Account, error) {
					return createVerifiedAccount(t, email, "pw12345678"), nil
				}
			},
			expectedError: domain.ErrAccountExists,
		},
		{
			name:        "fifth attempt with four unverified siblings succeeds",
			mutateInput: func(in *domain.RegisterInput) {},
			setupMocks: func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {
				repo.CountUnverifiedByEmailFunc = func(ctx context.Context, email string) (int64, error) {
					return 4, nil
				}
			},
			validateResult: func(t *testing.T, result *domain.RegisterResult, repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {
				if result.Account == nil {
					t.Fatal("expected account")
				}
			},
		},
		{
			name:        "sixth attempt with five unverified siblings is rejected",
			mutateInput: func(in *domain.RegisterInput) {},
			setupMocks: func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {
				repo.CountUnverifiedByEmailFunc = func(ctx context.Context, email string) (int64, error) {
					return 5, nil
				}
			},
			expectedError: domain.ErrTooManyAttempts,
		},
		{
			name:           "password too short",
			mutateInput:    func(in *domain.RegisterInput) { in.Password = "short12" },
			setupMocks:     func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {},
			wantValidation: "password",
		},
		{
			name:           "password too long",
			mutateInput:    func(in *domain.RegisterInput) { in.Password = strings.Repeat("a", 17) },
			setupMocks:     func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {},
			wantValidation: "password",
		},
		{
			name:        "mail failure keeps the account",
			mutateInput: func(in *domain.RegisterInput) {},
			setupMocks: func(repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {
				mailer.SendFunc = func(to, subject, body string) error {
					return domain.ErrEmailSend
				}
			},
			validateResult: func(t *testing.T, result *domain.RegisterResult, repo *mocks.MockAccountRepository, mailer *mocks.MockMailer) {
				if result.Account == nil {
					t.Fatal("account must survive a mail failure")
				}
				if result.MailDispatched {
					t.Error("MailDispatched must be false after a send failure")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository()
			mailer := mocks.NewMockMailer()
			tt.setupMocks(repo, mailer)

			svc := createAuthServiceForTest(t, repo, nil, nil, nil, nil, mailer)

			input := createRegisterInput(t)
			tt.mutateInput(&input)

			result, err := svc.Register(context.Background(), input)

			if tt.wantValidation != "" {
				ve, ok := domain.AsValidation(err)
				if !ok {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				found := false
				for _, v := range ve.Violations {
					if v.Field == tt.wantValidation {
						found = true
					}
				}
				if !found {
					t.Errorf("expected violation on %q, got %v", tt.wantValidation, ve.Violations)
				}
				return
			}

			if tt.expectedError != nil {
				if err != tt.expectedError {
					t.Fatalf("expected %v, got %v", tt.expectedError, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validateResult != nil {
				tt.validateResult(t, result, repo, mailer)
			}
		})
	}
}

func TestAuthServiceImpl_VerifyOTP(t *testing.T) {
	email := "asha@nitm.ac.in"
	future := time.Now().Add(10 * time.Minute)
	past := time.Now().Add(-time.Minute)

	t.Run("missing email or otp", func(t *testing.T) {
		svc := createAuthServiceForTest(t, nil, nil, nil, nil, nil, nil)

		if _, err := svc.VerifyOTP(context.Background(), "", "12345"); err != domain.ErrMissingFields {
			t.Errorf("expected ErrMissingFields, got %v", err)
		}
		if _, err := svc.VerifyOTP(context.Background(), email, ""); err != domain.ErrMissingFields {
			t.Errorf("expected ErrMissingFields, got %v", err)
		}
	})

	t.Run("no unverified account", func(t *testing.T) {
		svc := createAuthServiceForTest(t, nil, nil, nil, NewOTPService(15*time.Minute), nil, nil)

		if _, err := svc.VerifyOTP(context.Background(), email, "12345"); err != domain.ErrAccountNotFound {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("newest sibling wins and the rest are pruned", func(t *testing.T) {
		newest := createUnverifiedAccount(t, email, 54321, future)
		older := createUnverifiedAccount(t, email, 11111, future)

		repo := mocks.NewMockAccountRepository()
		repo.FindUnverifiedByEmailFunc = func(ctx context.Context, e string) ([]*domain.Account, error) {
			return []*domain.Account{newest, older}, nil
		}
		var prunedKeep primitive.ObjectID
		repo.DeleteUnverifiedExceptFunc = func(ctx context.Context, e string, keepID primitive.ObjectID) error {
			prunedKeep = keepID
			return nil
		}
		var verifiedID primitive.ObjectID
		repo.MarkVerifiedFunc = func(ctx context.Context, id primitive.ObjectID) error {
			verifiedID = id
			return nil
		}

		svc := createAuthServiceForTest(t, repo, nil, nil, NewOTPService(15*time.Minute), nil, nil)

		result, err := svc.VerifyOTP(context.Background(), email, "54321")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if prunedKeep != newest.ID {
			t.Error("pruning did not keep the newest sibling")
		}
		if verifiedID != newest.ID {
			t.Error("verification did not target the newest sibling")
		}
		if !result.Account.AccountVerified {
			t.Error("returned account is not marked verified")
		}
		if result.Account.VerificationCode != 0 || result.Account.VerificationCodeExpire != nil {
			t.Error("OTP sub-state not cleared on returned account")
		}
		if result.Token == "" {
			t.Error("expected a session token")
		}
	})

	t.Run("wrong code is a mismatch", func(t *testing.T) {
		account := createUnverifiedAccount(t, email, 54321, future)
		repo := mocks.NewMockAccountRepository()
		repo.FindUnverifiedByEmailFunc = func(ctx context.Context, e string) ([]*domain.Account, error) {
			return []*domain.Account{account}, nil
		}

		svc := createAuthServiceForTest(t, repo, nil, nil, NewOTPService(15*time.Minute), nil, nil)

		if _, err := svc.VerifyOTP(context.Background(), email, "99999"); err != domain.ErrOTPInvalid {
			t.Errorf("expected ErrOTPInvalid, got %v", err)
		}
	})

	t.Run("correct code after expiry", func(t *testing.T) {
		account := createUnverifiedAccount(t, email, 54321, past)
		repo := mocks.NewMockAccountRepository()
		repo.FindUnverifiedByEmailFunc = func(ctx context.Context, e string) ([]*domain.Account, error) {
			return []*domain.Account{account}, nil
		}

		svc := createAuthServiceForTest(t, repo, nil, nil, NewOTPService(15*time.Minute), nil, nil)

		if _, err := svc.VerifyOTP(context.Background(), email, "54321"); err != domain.ErrOTPExpired {
			t.Errorf("expected ErrOTPExpired, got %v", err)
		}
	})

	t.Run("duplicate verified race surfaces as conflict", func(t *testing.T) {
		account := createUnverifiedAccount(t, email, 54321, future)
		repo := mocks.NewMockAccountRepository()
		repo.FindUnverifiedByEmailFunc = func(ctx context.Context, e string) ([]*domain.Account, error) {
			return []*domain.Account{account}, nil
		}
		repo.MarkVerifiedFunc = func(ctx context.Context, id primitive.ObjectID) error {
			// Unique index on verified email rejects the second winner.
			return domain.ErrAccountExists
		}

		svc := createAuthServiceForTest(t, repo, nil, nil, NewOTPService(15*time.Minute), nil, nil)

		if _, err := svc.VerifyOTP(context.Background(), email, "54321"); err != domain.ErrAccountExists {
			t.Errorf("expected ErrAccountExists, got %v", err)
		}
	})
}

func TestAuthServiceImpl_Login(t *testing.T) {
	email := "asha@nitm.ac.in"

	t.Run("missing fields", func(t *testing.T) {
		svc := createAuthServiceForTest(t, nil, nil, nil, nil, nil, nil)
		if _, err := svc.Login(context.Background(), "", "pw12345678"); err != domain.ErrMissingFields {
			t.Errorf("expected ErrMissingFields, got %v", err)
		}
		if _, err := svc.Login(context.Background(), email, ""); err != domain.ErrMissingFields {
			t.Errorf("expected ErrMissingFields, got %v", err)
		}
	})

	t.Run("unknown and unverified emails fail like a wrong password", func(t *testing.T) {
		// Default repo behavior: no verified account. An unverified
		// account is invisible to FindVerifiedByEmail, so both cases
		// land here.
		svc := createAuthServiceForTest(t, nil, nil, nil, nil, nil, nil)

		_, errUnknown := svc.Login(context.Background(), email, "pw12345678")

		repo := mocks.NewMockAccountRepository()
		repo.FindVerifiedByEmailFunc = func(ctx context.Context, e string, withPassword bool) (*domain.Account, error) {
			return createVerifiedAccount(t, e, "pw12345678"), nil
		}
		svc = createAuthServiceForTest(t, repo, nil, nil, nil, nil, nil)
		_, errWrongPw := svc.Login(context.Background(), email, "wrongpassword")

		if errUnknown != domain.ErrInvalidCredentials || errWrongPw != domain.ErrInvalidCredentials {
			t.Fatalf("got %v and %v, want ErrInvalidCredentials for both", errUnknown, errWrongPw)
		}
		if errUnknown.Error() != errWrongPw.Error() {
			t.Error("error messages differ between unknown user and wrong password")
		}
	})

	t.Run("successful login", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		var askedWithPassword bool
		repo.FindVerifiedByEmailFunc = func(ctx context.Context, e string, withPassword bool) (*domain.Account, error) {
			askedWithPassword = withPassword
			return createVerifiedAccount(t, e, "pw12345678"), nil
		}

		svc := createAuthServiceForTest(t, repo, nil, nil, nil, nil, nil)

		result, err := svc.Login(context.Background(), email, "pw12345678")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !askedWithPassword {
			t.Error("login must request the password hash explicitly")
		}
		if result.Token == "" {
			t.Error("expected a session token")
		}
		if result.Account.PasswordHash != "" {
			t.Error("password hash leaked in the login result")
		}
		if result.ExpiresIn <= 0 {
			t.Error("expected a positive expiry")
		}
	})
}

func TestAuthServiceImpl_ForgotPassword(t *testing.T) {
	email := "asha@nitm.ac.in"

	t.Run("missing email", func(t *testing.T) {
		svc := createAuthServiceForTest(t, nil, nil, nil, nil, nil, nil)
		if err := svc.ForgotPassword(context.Background(), " "); err != domain.ErrMissingFields {
			t.Errorf("expected ErrMissingFields, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := createAuthServiceForTest(t, nil, nil, nil, nil, nil, nil)
		if err := svc.ForgotPassword(context.Background(), email); err != domain.ErrAccountNotFound {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("token persisted and link emailed", func(t *testing.T) {
		account := createVerifiedAccount(t, email, "pw12345678")
		repo := mocks.NewMockAccountRepository()
		repo.FindVerifiedByEmailFunc = func(ctx context.Context, e string, withPassword bool) (*domain.Account, error) {
			return account, nil
		}
		var storedHash string
		repo.SetResetTokenFunc = func(ctx context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error {
			storedHash = hash
			return nil
		}
		resetSvc := NewResetTokenService(15 * time.Minute)
		mailer := mocks.NewMockMailer()

		svc := createAuthServiceForTest(t, repo, nil, nil, nil, resetSvc, mailer)

		if err := svc.ForgotPassword(context.Background(), email); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(mailer.Sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(mailer.Sent))
		}
		body := mailer.Sent[0].Body
		if !strings.Contains(body, "/password/reset/") {
			t.Fatalf("reset link missing from email body: %q", body)
		}

		// The emailed plaintext must hash to what was stored, and the
		// plaintext itself must never be stored.
		idx := strings.Index(body, "/password/reset/")
		rest := body[idx+len("/password/reset/"):]
		token := rest[:40]
		if resetSvc.HashToken(token) != storedHash {
			t.Error("emailed token does not match the stored hash")
		}
		if token == storedHash {
			t.Error("plaintext token stored directly")
		}
	})

	t.Run("mail failure rolls back the token", func(t *testing.T) {
		account := createVerifiedAccount(t, email, "pw12345678")
		repo := mocks.NewMockAccountRepository()
		repo.FindVerifiedByEmailFunc = func(ctx context.Context, e string, withPassword bool) (*domain.Account, error) {
			return account, nil
		}
		tokenSet := false
		repo.SetResetTokenFunc = func(ctx context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error {
			tokenSet = true
			return nil
		}
		tokenCleared := false
		repo.ClearResetTokenFunc = func(ctx context.Context, id primitive.ObjectID) error {
			tokenCleared = true
			return nil
		}
		mailer := mocks.NewMockMailer()
		mailer.SendFunc = func(to, subject, body string) error {
			return domain.ErrEmailSend
		}

		svc := createAuthServiceForTest(t, repo, nil, nil, nil, nil, mailer)

		err := svc.ForgotPassword(context.Background(), email)
		if err != domain.ErrEmailSend {
			t.Fatalf("expected ErrEmailSend, got %v", err)
		}
		if !tokenSet || !tokenCleared {
			t.Errorf("token lifecycle wrong: set=%v cleared=%v", tokenSet, tokenCleared)
		}
	})
}

func TestAuthServiceImpl_ResetPassword(t *testing.T) {
	t.Run("unknown or expired token", func(t *testing.T) {
		// Default repo: FindByResetTokenHash misses, which is also the
		// shape of an expired token since the store pre-filters on the
		// expiry window.
		svc := createAuthServiceForTest(t, nil, nil, nil, nil, nil, nil)

		_, err := svc.ResetPassword(context.Background(), "sometoken", "pw12345678", "pw12345678")
		if err != domain.ErrResetTokenInvalid {
			t.Errorf("expected ErrResetTokenInvalid, got %v", err)
		}
	})

	t.Run("password confirm mismatch", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		repo.FindByResetTokenHashFunc = func(ctx context.Context, hash string, now time.Time) (*domain.Account, error) {
			return createVerifiedAccount(t, "asha@nitm.ac.in", "old"), nil
		}
		svc := createAuthServiceForTest(t, repo, nil, nil, nil, nil, nil)

		_, err := svc.ResetPassword(context.Background(), "tok", "pw12345678", "pw12345679")
		if _, ok := domain.AsValidation(err); !ok {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("password outside bounds", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		repo.FindByResetTokenHashFunc = func(ctx context.Context, hash string, now time.Time) (*domain.Account, error) {
			return createVerifiedAccount(t, "asha@nitm.ac.in", "old"), nil
		}
		svc := createAuthServiceForTest(t, repo, nil, nil, nil, nil, nil)

		_, err := svc.ResetPassword(context.Background(), "tok", "short", "short")
		if _, ok := domain.AsValidation(err); !ok {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("successful reset issues a session", func(t *testing.T) {
		account := createVerifiedAccount(t, "asha@nitm.ac.in", "oldpassword1")
		repo := mocks.NewMockAccountRepository()
		var lookupHash string
		repo.FindByResetTokenHashFunc = func(ctx context.Context, hash string, now time.Time) (*domain.Account, error) {
			lookupHash = hash
			return account, nil
		}
		var newHash string
		repo.UpdatePasswordFunc = func(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
			newHash = passwordHash
			return nil
		}
		resetSvc := NewResetTokenService(15 * time.Minute)

		svc := createAuthServiceForTest(t, repo, nil, nil, nil, resetSvc, nil)

		result, err := svc.ResetPassword(context.Background(), "plain-token", "pw12345678", "pw12345678")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lookupHash != resetSvc.HashToken("plain-token") {
			t.Error("lookup did not use the token hash")
		}
		if newHash != "hashed_pw12345678" {
			t.Errorf("persisted hash = %q", newHash)
		}
		if result.Token == "" {
			t.Error("expected a session token")
		}
		if result.Account.ResetPasswordToken != "" || result.Account.ResetPasswordExpire != nil {
			t.Error("reset sub-state not cleared on returned account")
		}
	})
}

func TestAuthServiceImpl_UpdatePassword(t *testing.T) {
	account := createVerifiedAccount(t, "asha@nitm.ac.in", "current12345")
	id := account.ID.Hex()

	newRepo := func() *mocks.MockAccountRepository {
		repo := mocks.NewMockAccountRepository()
		repo.FindByIDFunc = func(ctx context.Context, oid primitive.ObjectID, withPassword bool) (*domain.Account, error) {
			if oid == account.ID {
				return account, nil
			}
			return nil, domain.ErrAccountNotFound
		}
		return repo
	}

	t.Run("missing fields", func(t *testing.T) {
		svc := createAuthServiceForTest(t, newRepo(), nil, nil, nil, nil, nil)
		if err := svc.UpdatePassword(context.Background(), id, "", "pw12345678", "pw12345678"); err != domain.ErrMissingFields {
			t.Errorf("expected ErrMissingFields, got %v", err)
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc := createAuthServiceForTest(t, newRepo(), nil, nil, nil, nil, nil)
		err := svc.UpdatePassword(context.Background(), id, "nottherightone", "pw12345678", "pw12345678")
		if err != domain.ErrInvalidCredentials {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("new password pair invalid", func(t *testing.T) {
		svc := createAuthServiceForTest(t, newRepo(), nil, nil, nil, nil, nil)
		err := svc.UpdatePassword(context.Background(), id, "current12345", "pw12345678", "different123")
		if _, ok := domain.AsValidation(err); !ok {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("successful update", func(t *testing.T) {
		repo := newRepo()
		var persisted string
		repo.UpdatePasswordFunc = func(ctx context.Context, oid primitive.ObjectID, passwordHash string) error {
			persisted = passwordHash
			return nil
		}
		svc := createAuthServiceForTest(t, repo, nil, nil, nil, nil, nil)

		err := svc.UpdatePassword(context.Background(), id, "current12345", "newpass12345", "newpass12345")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if persisted != "hashed_newpass12345" {
			t.Errorf("persisted hash = %q", persisted)
		}
	})
}

func TestAuthServiceImpl_GetProfile(t *testing.T) {
	account := createVerifiedAccount(t, "asha@nitm.ac.in", "pw12345678")

	repo := mocks.NewMockAccountRepository()
	repo.FindByIDFunc = func(ctx context.Context, oid primitive.ObjectID, withPassword bool) (*domain.Account, error) {
		if withPassword {
			t.Error("profile read must not include the password hash")
		}
		if oid == account.ID {
			return account, nil
		}
		return nil, domain.ErrAccountNotFound
	}

	svc := createAuthServiceForTest(t, repo, nil, nil, nil, nil, nil)

	got, err := svc.GetProfile(context.Background(), account.ID.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != account.Email {
		t.Errorf("email = %q", got.Email)
	}

	if _, err := svc.GetProfile(context.Background(), "not-an-object-id"); err != domain.ErrAccountNotFound {
		t.Errorf("expected ErrAccountNotFound for malformed id, got %v", err)
	}
}
