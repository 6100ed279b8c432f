package services

import (
	"errors"  // For validator error unwrapping
	"math"    // For NaN/Inf coordinate checks
	"reflect" // For the validator tag-name func
	"strconv" // For coordinate parsing
	"strings" // For domain/gender normalization

	"github.com/go-playground/validator/v10" // For required-field validation

	"paediprime/backend/models"
)

// blockedDomains is the fixed blocklist of known disposable/invalid email
// domains. Matching is on the substring after the last "@", lowercased.
var blockedDomains = map[string]struct{}{
	"mailinator.com":    {},
	"tempmail.com":      {},
	"temp-mail.org":     {},
	"10minutemail.com":  {},
	"guerrillamail.com": {},
	"sharklasers.com":   {},
	"yopmail.com":       {},
	"trashmail.com":     {},
	"dispostable.com":   {},
	"getnada.com":       {},
	"fakeinbox.com":     {},
	"throwawaymail.com": {},
	"maildrop.cc":       {},
	"mintemail.com":     {},
	"spamgourmet.com":   {},
	"example.com":       {},
	"test.com":          {},
	"invalid.com":       {},
}

// genderCodes is the fixed 4-value gender enumeration.
var genderCodes = map[string]struct{}{
	"M": {}, "F": {}, "O": {}, "C": {},
}

// formValidator reports issues using the multipart field names from the
// 'form' struct tags, so clients see "first_name", not "FirstName".
var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRegistration checks a registration form and reports every problem
// found, never just the first. It is pure: no I/O, no side effects.
//
// Missing fields, a blocked email domain, an unrecognized gender value and
// out-of-range or non-numeric coordinates are all distinct issues and are
// all collected in one pass. A missing gender is reported as a missing
// field only; the invalid-value check runs only when a value is present.
func ValidateRegistration(form *models.RegistrationForm, hasFile bool) []models.ValidationIssue {
	var issues []models.ValidationIssue

	if err := formValidator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				issues = append(issues, models.ValidationIssue{
					Field:   fe.Field(),
					Message: "is required",
				})
			}
		}
	}
	if !hasFile {
		issues = append(issues, models.ValidationIssue{
			Field:   "pfp",
			Message: "is required",
			Details: "profile picture file is missing",
		})
	}

	if form.Email != "" && IsBlockedEmail(form.Email) {
		issues = append(issues, models.ValidationIssue{
			Field:   "email",
			Message: "domain is blocked",
			Details: "disposable email domains are not allowed",
		})
	}

	if form.Gender != "" && NormalizeGender(form.Gender) == "" {
		issues = append(issues, models.ValidationIssue{
			Field:   "gender",
			Message: "invalid value",
			Details: "use M, F, O, or C",
		})
	}

	if form.LocationX != "" {
		if _, ok := parseCoordinate(form.LocationX, -90, 90); !ok {
			issues = append(issues, models.ValidationIssue{
				Field:   "location_x",
				Message: "invalid value",
				Details: "latitude must be a number between -90 and 90",
			})
		}
	}
	if form.LocationY != "" {
		if _, ok := parseCoordinate(form.LocationY, -180, 180); !ok {
			issues = append(issues, models.ValidationIssue{
				Field:   "location_y",
				Message: "invalid value",
				Details: "longitude must be a number between -180 and 180",
			})
		}
	}

	return issues
}

// IsBlockedEmail reports whether the email's domain (after the last "@",
// case-insensitive) is on the blocklist.
func IsBlockedEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	_, blocked := blockedDomains[domain]
	return blocked
}

// NormalizeGender trims and uppercases the input and returns the canonical
// single-letter code, or "" when the value is not one of M, F, O, C.
func NormalizeGender(gender string) string {
	g := strings.ToUpper(strings.TrimSpace(gender))
	if _, ok := genderCodes[g]; !ok {
		return ""
	}
	return g
}

// ParseCoordinates parses the latitude/longitude form values. ok is false
// when either fails to parse as a finite number or falls outside
// [-90, 90] × [-180, 180]; boundary values are accepted.
func ParseCoordinates(locationX, locationY string) (lat, lng float64, ok bool) {
	lat, okX := parseCoordinate(locationX, -90, 90)
	lng, okY := parseCoordinate(locationY, -180, 180)
	return lat, lng, okX && okY
}

// parseCoordinate treats parse failures and non-finite values identically
// to out-of-range values.
func parseCoordinate(s string, min, max float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < min || v > max {
		return 0, false
	}
	return v, true
}
