// Package constants provides shared constants used throughout the pointage
// codebase. This includes date and clock layouts, file permissions, and other
// values that should be consistent across the application.
package constants

// Layout constants define the wire formats for dates and clock times.
// Dates are stored as DD/MM/YYYY for locale display; they are not sortable
// lexicographically and must be parsed before ordering.
const (
	// DateLayout is the Go time layout for stored dates (DD/MM/YYYY)
	DateLayout = "02/01/2006"

	// ClockLayout is the Go time layout for stored clock times (HH:MM)
	ClockLayout = "15:04"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// DefaultDeparture is the departure time pre-filled by callers when an entry
// has no recorded departure yet.
const DefaultDeparture = "17:30"
