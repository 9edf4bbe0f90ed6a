package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account roles. Registration always produces a User; elevated roles are
// provisioned directly in the store.
const (
	RoleAdmin  = "Admin"
	RoleWarden = "Warden"
	RoleUser   = "User"
)

// Gender values accepted on registration.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// DefaultHostels is the default closed set of hostel names.
var DefaultHostels = []string{
	"PhD Boys Hostel",
	"3 Seater Boys Hostel",
	"Girls Hostel",
}

// Account represents a hostel resident account. The password hash is
// excluded from JSON and only loaded from the store when a comparison is
// explicitly requested.
type Account struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	PasswordHash    string             `bson:"password,omitempty" json:"-"`
	Role            string             `bson:"role" json:"role"`
	ContactNumber   string             `bson:"contactNumber" json:"contactNumber"`
	GuardianContact string             `bson:"guardianContact" json:"guardianContact"`
	Hostel          string             `bson:"hostel" json:"hostel"`
	RoomNumber      string             `bson:"roomNumber" json:"roomNumber"`
	Department      string             `bson:"department" json:"department"`
	Semester        string             `bson:"semester" json:"semester"`
	Gender          string             `bson:"gender" json:"gender"`

	AccountVerified bool `bson:"accountVerified" json:"accountVerified"`
	IsActive        bool `bson:"isActive" json:"isActive"`

	// Verification sub-state: present together or absent together,
	// cleared on successful verification.
	VerificationCode       int        `bson:"verificationCode,omitempty" json:"-"`
	VerificationCodeExpire *time.Time `bson:"verificationCodeExpire,omitempty" json:"-"`

	// Reset sub-state: only the sha256 of the emailed token is stored.
	ResetPasswordToken  string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time `bson:"resetPasswordExpire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RegisterInput carries the registration payload into the workflow.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ContactNumber   string
	GuardianContact string
	Hostel          string
	RoomNumber      string
	Department      string
	Semester        string
	Gender          string
}

// RegisterResult reports a completed registration. MailDispatched is false
// when the account was created but the verification email could not be
// sent; the account is kept either way.
type RegisterResult struct {
	Account        *Account
	MailDispatched bool
}

// AuthResult represents a successful authentication outcome.
type AuthResult struct {
	Account   *Account
	Token     string
	ExpiresIn int64
}

// TokenClaims represents session token claims.
type TokenClaims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
