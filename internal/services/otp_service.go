package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/you/hostelauth/domain"
)

// OTPServiceImpl implements domain.OTPService. Codes live on the account
// document alongside their expiry; this service only generates and checks
// them.
type OTPServiceImpl struct {
	ttl time.Duration
}

// NewOTPService creates a new OTP service with the given code lifetime.
func NewOTPService(ttl time.Duration) domain.OTPService {
	return &OTPServiceImpl{ttl: ttl}
}

// Issue implements domain.OTPService. The leading digit is drawn from 1-9
// so the code always has exactly five digits.
func (s *OTPServiceImpl) Issue() (int, time.Time, error) {
	first, err := rand.Int(rand.Reader, big.NewInt(9))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to generate leading digit: %w", err)
	}
	rest, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to generate code digits: %w", err)
	}

	code := int(first.Int64()+1)*10000 + int(rest.Int64())
	return code, time.Now().Add(s.ttl), nil
}

// Check implements domain.OTPService. A supplied code that fails numeric
// conversion or differs from the stored one is a mismatch; expiry is only
// consulted once the code matches.
func (s *OTPServiceImpl) Check(stored int, supplied string, expiresAt *time.Time, now time.Time) error {
	code, err := strconv.Atoi(strings.TrimSpace(supplied))
	if err != nil {
		return domain.ErrOTPInvalid
	}
	if stored == 0 || code != stored {
		return domain.ErrOTPInvalid
	}
	if expiresAt == nil || now.After(*expiresAt) {
		return domain.ErrOTPExpired
	}
	return nil
}
