package postgres

import "unicode"

const minPasswordLength = 8

// validatePassword enforces the account password policy. Each violation
// produces its own description so callers can surface all of them at once.
func validatePassword(password string) []string {
	var violations []string
	if len(password) < minPasswordLength {
		violations = append(violations, "Passwords must be at least 8 characters.")
	}

	var hasDigit, hasUpper, hasLower, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		default:
			hasSymbol = true
		}
	}
	if !hasDigit {
		violations = append(violations, "Passwords must have at least one digit ('0'-'9').")
	}
	if !hasUpper {
		violations = append(violations, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if !hasLower {
		violations = append(violations, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if !hasSymbol {
		violations = append(violations, "Passwords must have at least one non alphanumeric character.")
	}
	return violations
}
