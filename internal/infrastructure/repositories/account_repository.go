package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/you/hostelauth/domain"
)

// AccountRepositoryImpl implements domain.AccountRepository over a MongoDB
// collection.
type AccountRepositoryImpl struct {
	coll *mongo.Collection
}

// NewAccountRepository creates a Mongo-backed account repository.
func NewAccountRepository(coll *mongo.Collection) domain.AccountRepository {
	return &AccountRepositoryImpl{coll: coll}
}

// passwordProjection hides the password hash unless a comparison
// explicitly asks for it.
func passwordProjection(withPassword bool) bson.M {
	if withPassword {
		return bson.M{}
	}
	return bson.M{"password": 0}
}

// Create implements domain.AccountRepository
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		account.ID = oid
	}
	return nil
}

// FindByID implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID, withPassword bool) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id}, withPassword)
}

// FindVerifiedByEmail implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindVerifiedByEmail(ctx context.Context, email string, withPassword bool) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email, "accountVerified": true}, withPassword)
}

// FindUnverifiedByEmail implements domain.AccountRepository. Results are
// ordered newest first so the caller can treat the head as canonical.
func (r *AccountRepositoryImpl) FindUnverifiedByEmail(ctx context.Context, email string) ([]*domain.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"email": email, "accountVerified": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query unverified accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []*domain.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode unverified accounts: %w", err)
	}
	return accounts, nil
}

// CountUnverifiedByEmail implements domain.AccountRepository
func (r *AccountRepositoryImpl) CountUnverifiedByEmail(ctx context.Context, email string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"email": email, "accountVerified": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unverified accounts: %w", err)
	}
	return count, nil
}

// DeleteUnverifiedExcept implements domain.AccountRepository
func (r *AccountRepositoryImpl) DeleteUnverifiedExcept(ctx context.Context, email string, keepID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{
		"_id":             bson.M{"$ne": keepID},
		"email":           email,
		"accountVerified": false,
	})
	if err != nil {
		return fmt.Errorf("failed to delete unverified duplicates: %w", err)
	}
	return nil
}

// FindByResetTokenHash implements domain.AccountRepository. The store
// pre-filters on an unexpired reset window so an expired token behaves
// exactly like an unknown one.
func (r *AccountRepositoryImpl) FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{
		"resetPasswordToken":  hash,
		"resetPasswordExpire": bson.M{"$gt": now},
	}, false)
}

// MarkVerified implements domain.AccountRepository. Verification flips the
// flag and clears the OTP sub-state in one atomic update so no reader ever
// observes a verified account that still carries a live code.
func (r *AccountRepositoryImpl) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"accountVerified": true, "updatedAt": time.Now()},
			"$unset": bson.M{"verificationCode": "", "verificationCodeExpire": ""},
		},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("failed to mark account verified: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// SetResetToken implements domain.AccountRepository. This is a partial
// update on purpose: attaching a reset token must not re-run full profile
// validation.
func (r *AccountRepositoryImpl) SetResetToken(ctx context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"resetPasswordToken":  hash,
			"resetPasswordExpire": expiresAt,
			"updatedAt":           time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ClearResetToken implements domain.AccountRepository
func (r *AccountRepositoryImpl) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"updatedAt": time.Now()},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

// UpdatePassword implements domain.AccountRepository. Clearing the reset
// sub-state rides in the same update so a used token cannot be replayed.
func (r *AccountRepositoryImpl) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"password": passwordHash, "updatedAt": time.Now()},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepositoryImpl) findOne(ctx context.Context, filter bson.M, withPassword bool) (*domain.Account, error) {
	opts := options.FindOne().SetProjection(passwordProjection(withPassword))

	var account domain.Account
	err := r.coll.FindOne(ctx, filter, opts).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &account, nil
}
