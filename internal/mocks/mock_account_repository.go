package mocks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/you/hostelauth/domain"
)

// MockAccountRepository implements domain.AccountRepository for testing
type MockAccountRepository struct {
	CreateFunc                 func(ctx context.Context, account *domain.Account) error
	FindByIDFunc               func(ctx context.Context, id primitive.ObjectID, withPassword bool) (*domain.Account, error)
	FindVerifiedByEmailFunc    func(ctx context.Context, email string, withPassword bool) (*domain.Account, error)
	FindUnverifiedByEmailFunc  func(ctx context.Context, email string) ([]*domain.Account, error)
	CountUnverifiedByEmailFunc func(ctx context.Context, email string) (int64, error)
	DeleteUnverifiedExceptFunc func(ctx context.Context, email string, keepID primitive.ObjectID) error
	FindByResetTokenHashFunc   func(ctx context.Context, hash string, now time.Time) (*domain.Account, error)
	MarkVerifiedFunc           func(ctx context.Context, id primitive.ObjectID) error
	SetResetTokenFunc          func(ctx context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error
	ClearResetTokenFunc        func(ctx context.Context, id primitive.ObjectID) error
	UpdatePasswordFunc         func(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// NewMockAccountRepository creates a new MockAccountRepository with default behaviors
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	// Default behavior: assign an id and succeed
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	return nil
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id primitive.ObjectID, withPassword bool) (*domain.Account, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id, withPassword)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindVerifiedByEmail(ctx context.Context, email string, withPassword bool) (*domain.Account, error) {
	if m.FindVerifiedByEmailFunc != nil {
		return m.FindVerifiedByEmailFunc(ctx, email, withPassword)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindUnverifiedByEmail(ctx context.Context, email string) ([]*domain.Account, error) {
	if m.FindUnverifiedByEmailFunc != nil {
		return m.FindUnverifiedByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockAccountRepository) CountUnverifiedByEmail(ctx context.Context, email string) (int64, error) {
	if m.CountUnverifiedByEmailFunc != nil {
		return m.CountUnverifiedByEmailFunc(ctx, email)
	}
	return 0, nil
}

func (m *MockAccountRepository) DeleteUnverifiedExcept(ctx context.Context, email string, keepID primitive.ObjectID) error {
	if m.DeleteUnverifiedExceptFunc != nil {
		return m.DeleteUnverifiedExceptFunc(ctx, email, keepID)
	}
	return nil
}

func (m *MockAccountRepository) FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (*domain.Account, error) {
	if m.FindByResetTokenHashFunc != nil {
		return m.FindByResetTokenHashFunc(ctx, hash, now)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, id)
	}
	return nil
}

func (m *MockAccountRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, hash, expiresAt)
	}
	return nil
}

func (m *MockAccountRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	if m.ClearResetTokenFunc != nil {
		return m.ClearResetTokenFunc(ctx, id)
	}
	return nil
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AccountRepository = (*MockAccountRepository)(nil)
