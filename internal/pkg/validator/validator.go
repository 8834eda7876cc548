package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// Sheet titles may not contain these characters, and a staff name doubles
// as the title of that person's timesheet.
var sheetTitleForbidden = regexp.MustCompile(`[\[\]\*\?/\\:]`)

// MaxStaffNameLength is the longest name accepted for a roster entry.
const MaxStaffNameLength = 100

// IsValidStaffName reports whether name can be used as a roster key and sheet title.
func IsValidStaffName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxStaffNameLength {
		return false
	}
	return !sheetTitleForbidden.MatchString(name)
}

// IsReservedName reports whether name matches one of reserved, ignoring
// case as sheet titles do.
func IsReservedName(name string, reserved []string) bool {
	name = strings.TrimSpace(name)
	for _, r := range reserved {
		if strings.EqualFold(name, r) {
			return true
		}
	}
	return false
}

// Wage cells may carry currency symbols or thousands separators.
var nonDecimal = regexp.MustCompile(`[^0-9.]`)

// StripNonDecimal removes everything except digits and the decimal point.
func StripNonDecimal(s string) string {
	return nonDecimal.ReplaceAllString(s, "")
}
