package templates

// ReactivationCodeData holds variables for the account.reactivation_code scenario.
type ReactivationCodeData struct {
	Email        string
	Code         string
	ExpiresAt    string
	SupportEmail string
}

// ReactivationCode is the typed handle for the account.reactivation_code template.
var ReactivationCode = Expect[ReactivationCodeData]("account.reactivation_code")

// PasswordResetCodeData holds variables for the account.password_reset_code scenario.
type PasswordResetCodeData struct {
	Email        string
	Code         string
	ExpiresAt    string
	SupportEmail string
}

// PasswordResetCode is the typed handle for the account.password_reset_code template.
var PasswordResetCode = Expect[PasswordResetCodeData]("account.password_reset_code")

// DeactivatedData holds variables for the account.deactivated notice.
type DeactivatedData struct {
	Email        string
	SupportEmail string
}

// Deactivated is the typed handle for the account.deactivated template.
var Deactivated = Expect[DeactivatedData]("account.deactivated")
