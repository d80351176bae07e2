package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/id-portal/internal/dto"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

const (
	msgNeedTwoNames     = "Please enter at least 2 names (e.g., Kelvin Alianda)"
	msgBadIDNumber      = "ID number must be only numbers with maximum 9 digits"
	msgBadPhoneNumber   = "Phone number must be only numbers with maximum 12 digits"
	msgPasswordMismatch = "Passwords do not match"

	passwordTitle = "Password Requirements"
)

var (
	idNumberPattern    = regexp.MustCompile(`^\d{1,9}$`)
	phoneNumberPattern = regexp.MustCompile(`^\d{1,12}$`)
	upperPattern       = regexp.MustCompile(`[A-Z]`)
	lowerPattern       = regexp.MustCompile(`[a-z]`)
	digitPattern       = regexp.MustCompile(`\d`)
	specialPattern     = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// PasswordProblems lists every password rule pw breaks, in display order.
func PasswordProblems(pw string) []string {
	problems := make([]string, 0, 5)
	if utf8.RuneCountInString(pw) < 8 {
		problems = append(problems, "At least 8 characters")
	}
	if !upperPattern.MatchString(pw) {
		problems = append(problems, "At least 1 uppercase letter")
	}
	if !lowerPattern.MatchString(pw) {
		problems = append(problems, "At least 1 lowercase letter")
	}
	if !digitPattern.MatchString(pw) {
		problems = append(problems, "At least 1 number")
	}
	if !specialPattern.MatchString(pw) {
		problems = append(problems, "At least 1 special character")
	}
	return problems
}

// ValidateSignupForm applies the officer signup rules in order and reports the first one broken.
func ValidateSignupForm(req dto.OfficerSignupRequest) error {
	if len(strings.Fields(req.FullName)) < 2 {
		return failWithNotice(appErrors.Clone(appErrors.ErrValidation, msgNeedTwoNames), "")
	}
	if !idNumberPattern.MatchString(req.IDNumber) {
		return failWithNotice(appErrors.Clone(appErrors.ErrValidation, msgBadIDNumber), "")
	}
	if !phoneNumberPattern.MatchString(req.PhoneNumber) {
		return failWithNotice(appErrors.Clone(appErrors.ErrValidation, msgBadPhoneNumber), "")
	}
	if problems := PasswordProblems(req.Password); len(problems) > 0 {
		return failWithNotice(appErrors.Clone(appErrors.ErrValidation, strings.Join(problems, ", ")), passwordTitle)
	}
	if req.Password != req.ConfirmPassword {
		return failWithNotice(appErrors.Clone(appErrors.ErrValidation, msgPasswordMismatch), "")
	}
	return nil
}
