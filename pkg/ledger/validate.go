package ledger

import (
	"regexp"
	"strings"

	"github.com/inhlab/pointage/pkg/errors"
)

// clockPattern matches 00:00 through 23:59, single-digit hours allowed.
var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// hourSeparators maps the legacy separator styles onto ':'.
var hourSeparators = strings.NewReplacer("h", ":", "H", ":")

// NormalizeClockTime converts user-entered clock strings to the stored HH:MM
// form. Legacy data and operators use "8h30" style separators; 'h' and 'H'
// are treated as ':', surrounding whitespace is dropped, and a single-digit
// hour is zero-padded.
func NormalizeClockTime(s string) string {
	s = strings.TrimSpace(hourSeparators.Replace(s))
	if strings.IndexByte(s, ':') == 1 {
		s = "0" + s
	}
	return s
}

// ValidateClockTime checks that s is a valid HH:MM clock time with hours
// 00-23 and minutes 00-59. This is the shared validation contract between
// the caller and the store: callers reject bad input before submitting, and
// Upsert enforces it again.
func ValidateClockTime(s string) error {
	if s == "" {
		return errors.NewValidationError("time", s, "time is required")
	}
	if !clockPattern.MatchString(s) {
		return errors.NewValidationError("time", s, "must match HH:MM (ex: 08:30)")
	}
	return nil
}
