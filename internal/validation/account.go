package validation

import "strings"

const subjectAccount = "account"

// Account field limits.
const (
	NameMinRunes     = 2
	NameMaxRunes     = 100
	PasswordMinRunes = 8
	// bcrypt ignores input past 72 bytes.
	PasswordMaxBytes = 72
)

// AccountInput is an untrusted signup payload.
type AccountInput struct {
	Email    string `json:"email"    validate:"required,email,max=320"`
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type nameInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateAccount normalizes and checks a signup payload. The returned copy
// has a normalized email and a trimmed name; the password is untouched.
func ValidateAccount(in AccountInput) (AccountInput, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	fields, err := checkStruct(&in)
	if err != nil {
		return AccountInput{}, err
	}
	if len(in.Password) > PasswordMaxBytes && !hasField(fields, "password") {
		fields = append(fields, FieldError{Field: "password", Reason: ReasonConstraint, Message: "must be at most 72 bytes"})
	}
	if len(fields) > 0 {
		return AccountInput{}, &ValidationError{Subject: subjectAccount, Fields: fields}
	}
	return in, nil
}

// ValidateName trims and checks a display name.
func ValidateName(name string) (string, error) {
	in := nameInput{Name: strings.TrimSpace(name)}
	fields, err := checkStruct(&in)
	if err != nil {
		return "", err
	}
	if len(fields) > 0 {
		return "", &ValidationError{Subject: subjectAccount, Fields: fields}
	}
	return in.Name, nil
}

func hasField(fields []FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}
