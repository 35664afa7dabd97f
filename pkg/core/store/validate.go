package store

import (
	"fmt"
	"unicode/utf8"

	"ballot-box/pkg/common/apperrors"
	"ballot-box/pkg/core/model"
)

// Field length bounds, matching the schema constraints the store enforces
// before commit.
const (
	usernameMinLen  = 5
	usernameMaxLen  = 15
	lastNameMinLen  = 3
	lastNameMaxLen  = 15
	firstNameMinLen = 3
	firstNameMaxLen = 15
	countryMinLen   = 4
	countryMaxLen   = 15
)

// checkLength bounds the character count, not the byte count, so multibyte
// input is measured the same way the caller typed it.
func checkLength(field, value string, min, max int) error {
	if value == "" {
		return apperrors.InvalidInput(fmt.Sprintf("%s is required", field))
	}
	length := utf8.RuneCountInString(value)
	if length < min {
		return apperrors.InvalidInput(fmt.Sprintf("%s must be at least %d characters", field, min))
	}
	if length > max {
		return apperrors.InvalidInput(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

// ValidateUser checks the user fields against the schema rules. Returns an
// InvalidInput error describing the first violation.
func ValidateUser(user *model.User) error {
	if err := checkLength("username", user.Username, usernameMinLen, usernameMaxLen); err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return apperrors.InvalidInput("password hash is required")
	}
	return nil
}

// ValidateCandidate checks the candidate fields against the schema rules.
func ValidateCandidate(candidate *model.Candidate) error {
	if err := checkLength("last name", candidate.LastName, lastNameMinLen, lastNameMaxLen); err != nil {
		return err
	}
	if err := checkLength("first name", candidate.FirstName, firstNameMinLen, firstNameMaxLen); err != nil {
		return err
	}
	if err := checkLength("country", candidate.Country, countryMinLen, countryMaxLen); err != nil {
		return err
	}
	if candidate.PoliticalOrientation == "" {
		return apperrors.InvalidInput("political orientation is required")
	}
	if candidate.Votes < 0 {
		return apperrors.InvalidInput("votes can not be negative")
	}
	return nil
}
