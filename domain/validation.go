package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Password length policy, inherited from the hostel-management backend.
// The 16-character upper bound is a deliberate policy choice of the
// institution, not a recommendation.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 16
)

var contactPattern = regexp.MustCompile(`^\d{10}$`)

// ValidationRules carries the configurable closed sets used by the
// registration validation pass.
type ValidationRules struct {
	EmailDomain string
	Hostels     []string
}

// EmailPattern builds the institutional email matcher for the configured
// domain suffix.
func (r ValidationRules) EmailPattern() *regexp.Regexp {
	return regexp.MustCompile(`^[\w.-]+@` + regexp.QuoteMeta(r.EmailDomain) + `$`)
}

// PasswordLengthOK reports whether a plaintext password satisfies the
// length policy.
func PasswordLengthOK(password string) bool {
	return len(password) >= MinPasswordLen && len(password) <= MaxPasswordLen
}

// NormalizeEmail lowercases and trims an email address before any lookup
// or persistence.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration runs the explicit pre-persistence validation pass
// over a registration payload and returns every field-level violation
// found, or nil when the payload is clean. Password length is checked by
// the workflow since the plaintext never reaches the entity.
func ValidateRegistration(in RegisterInput, rules ValidationRules) *ValidationError {
	ve := &ValidationError{}

	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"password", in.Password},
		{"contactNumber", in.ContactNumber},
		{"guardianContact", in.GuardianContact},
		{"hostel", in.Hostel},
		{"roomNumber", in.RoomNumber},
		{"department", in.Department},
		{"semester", in.Semester},
		{"gender", in.Gender},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			ve.Add(f.field, "is required")
		}
	}
	if ve.HasViolations() {
		return ve
	}

	if !rules.EmailPattern().MatchString(NormalizeEmail(in.Email)) {
		ve.Add("email", fmt.Sprintf("only @%s email is allowed", rules.EmailDomain))
	}
	if !contactPattern.MatchString(in.ContactNumber) {
		ve.Add("contactNumber", "must be a valid 10-digit phone number")
	}
	if !contactPattern.MatchString(in.GuardianContact) {
		ve.Add("guardianContact", "must be a valid 10-digit phone number")
	}
	if !containsString(rules.Hostels, in.Hostel) {
		ve.Add("hostel", "is not a recognized hostel")
	}
	switch in.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		ve.Add("gender", "must be one of Male, Female or Other")
	}

	if ve.HasViolations() {
		return ve
	}
	return nil
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
