package validate

import "strings"

// Registration is the sign-up form.
type Registration struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

var registrationMessages = messages{
	"name.required":            "Name is required",
	"email.required":           "Email is required",
	"email.email":              "Please enter a valid email address",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 8 characters long",
	"confirm_password.eqfield": "Passwords do not match",
}

// Register trims the form in place and checks it.
func Register(f *Registration) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Password = strings.TrimSpace(f.Password)
	f.ConfirmPassword = strings.TrimSpace(f.ConfirmPassword)
	return orNil(check(f, registrationMessages))
}

// Credentials is the sign-in form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var loginMessages = messages{
	"email.required":    "Email is required",
	"email.email":       "Please enter a valid email",
	"password.required": "Password is required",
}

// Login trims the form in place and checks it.
func Login(f *Credentials) error {
	f.Email = strings.TrimSpace(f.Email)
	f.Password = strings.TrimSpace(f.Password)
	return orNil(check(f, loginMessages))
}

// DisplayName is the profile name form.
type DisplayName struct {
	Name string `json:"name" validate:"required"`
}

// UpdateName trims the form in place and checks it.
func UpdateName(f *DisplayName) error {
	f.Name = strings.TrimSpace(f.Name)
	return orNil(check(f, messages{"name.required": "Name cannot be empty"}))
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=NewPassword"`
}

var passwordChangeMessages = messages{
	"current_password.required": "Current password required",
	"new_password.required":     "New password required",
	"new_password.min":          "Password must be at least 8 characters",
	"confirm_password.eqfield":  "Passwords do not match",
}

// ChangePassword trims the form in place and checks it.
func ChangePassword(f *PasswordChange) error {
	f.CurrentPassword = strings.TrimSpace(f.CurrentPassword)
	f.NewPassword = strings.TrimSpace(f.NewPassword)
	f.ConfirmPassword = strings.TrimSpace(f.ConfirmPassword)
	return orNil(check(f, passwordChangeMessages))
}

// AccountDeletion is the confirmation form for deleting an account.
type AccountDeletion struct {
	Password string `json:"password" validate:"required"`
}

// DeleteAccount trims the form in place and checks it.
func DeleteAccount(f *AccountDeletion) error {
	f.Password = strings.TrimSpace(f.Password)
	return orNil(check(f, messages{"password.required": "Password required"}))
}
