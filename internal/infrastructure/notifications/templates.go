package notifications

import "fmt"

// Subjects for the two outbound messages.
const (
	VerificationSubject  = "Verification Code (Hostel Management System)"
	PasswordResetSubject = "Hostel Management System Password Recovery"
)

// VerificationEmailBody builds the HTML body carrying a one-time
// verification code.
func VerificationEmailBody(code int) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Verify Your Email Address</h2>
  <p>Dear User,</p>
  <p>Use the verification code below to complete your registration:</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%d</p>
  <p>This code expires in 15 minutes. If you did not request it, please ignore this email.</p>
  <p>Hostel Management Team</p>
</div>`, code)
}

// PasswordResetEmailBody builds the HTML body carrying a reset link.
func PasswordResetEmailBody(resetURL string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Reset Your Password</h2>
  <p>Dear User,</p>
  <p>You requested a password reset. Click the button below to choose a new password:</p>
  <p><a href="%s" style="background-color: #1a73e8; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Reset Password</a></p>
  <p>If the button does not work, copy this link into your browser:</p>
  <p>%s</p>
  <p>This link expires in 15 minutes. If you did not request a reset, you can safely ignore this email.</p>
  <p>Hostel Management Team</p>
</div>`, resetURL, resetURL)
}
