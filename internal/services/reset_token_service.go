package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/you/hostelauth/domain"
)

// ResetTokenServiceImpl implements domain.ResetTokenService. The plaintext
// token rides in the emailed reset link; only its sha256 hex ever reaches
// the store.
type ResetTokenServiceImpl struct {
	ttl time.Duration
}

// NewResetTokenService creates a new reset token service with the given
// token lifetime.
func NewResetTokenService(ttl time.Duration) domain.ResetTokenService {
	return &ResetTokenServiceImpl{ttl: ttl}
}

// Issue implements domain.ResetTokenService
func (s *ResetTokenServiceImpl) Issue() (string, string, time.Time, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to generate reset token: %w", err)
	}

	plaintext := hex.EncodeToString(raw)
	return plaintext, s.HashToken(plaintext), time.Now().Add(s.ttl), nil
}

// HashToken implements domain.ResetTokenService
func (s *ResetTokenServiceImpl) HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
