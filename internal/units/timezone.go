// Package units provides timezone helpers for observation timestamps.
// All observations are stored in UTC; day boundaries and display times
// are derived in the configured local timezone.
package units

import (
	"fmt"
	"strings"
	"time"
)

// CommonTimezones is a curated list of tz database names covering every
// distinct STD/DST offset pair, ordered west to east. The API offers
// these when a client configures the observation timezone; any valid tz
// name is still accepted.
var CommonTimezones = []string{
	"Pacific/Niue",           // -11:00
	"America/Adak",           // -10:00/-09:00
	"Pacific/Honolulu",       // -10:00
	"Pacific/Marquesas",      // -09:30
	"America/Anchorage",      // -09:00/-08:00
	"Pacific/Gambier",        // -09:00
	"America/Los_Angeles",    // -08:00/-07:00
	"Pacific/Pitcairn",       // -08:00
	"America/Denver",         // -07:00/-06:00
	"America/Phoenix",        // -07:00
	"America/Chicago",        // -06:00/-05:00
	"America/Mexico_City",    // -06:00
	"America/New_York",       // -05:00/-04:00
	"America/Lima",           // -05:00
	"America/Barbados",       // -04:00
	"America/Santiago",       // -04:00/-03:00
	"America/St_Johns",       // -03:30/-02:30
	"America/Miquelon",       // -03:00/-02:00
	"America/Sao_Paulo",      // -03:00
	"America/Godthab",        // -02:00/-01:00
	"Atlantic/South_Georgia", // -02:00
	"Atlantic/Azores",        // -01:00/+00:00
	"Atlantic/Cape_Verde",    // -01:00
	"UTC",                    // +00:00
	"Africa/Abidjan",         // +00:00
	"Europe/Dublin",          // +00:00/+01:00
	"Antarctica/Troll",       // +00:00/+02:00
	"Africa/Lagos",           // +01:00
	"Europe/Berlin",          // +01:00/+02:00
	"Africa/Johannesburg",    // +02:00
	"Europe/Athens",          // +02:00/+03:00
	"Africa/Nairobi",         // +03:00
	"Asia/Tehran",            // +03:30
	"Asia/Dubai",             // +04:00
	"Asia/Kabul",             // +04:30
	"Asia/Karachi",           // +05:00
	"Asia/Kolkata",           // +05:30
	"Asia/Kathmandu",         // +05:45
	"Asia/Dhaka",             // +06:00
	"Asia/Yangon",            // +06:30
	"Asia/Bangkok",           // +07:00
	"Asia/Singapore",         // +08:00
	"Australia/Eucla",        // +08:45
	"Asia/Seoul",             // +09:00
	"Australia/Darwin",       // +09:30
	"Australia/Adelaide",     // +09:30/+10:30
	"Australia/Brisbane",     // +10:00
	"Australia/Sydney",       // +10:00/+11:00
	"Australia/Lord_Howe",    // +10:30/+11:00
	"Pacific/Bougainville",   // +11:00
	"Pacific/Norfolk",        // +11:00/+12:00
	"Pacific/Fiji",           // +12:00
	"Pacific/Auckland",       // +12:00/+13:00
	"Pacific/Chatham",        // +12:45/+13:45
	"Pacific/Apia",           // +13:00
	"Pacific/Kiritimati",     // +14:00
}

// IsTimezoneValid reports whether tz loads from the system tz database.
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// IsCommonTimezone reports whether tz is in the curated list.
func IsCommonTimezone(tz string) bool {
	for _, common := range CommonTimezones {
		if tz == common {
			return true
		}
	}
	return false
}

// ValidTimezonesString returns the curated list as a comma-separated
// string for error messages.
func ValidTimezonesString() string {
	return strings.Join(CommonTimezones, ", ")
}

// ConvertTime converts a stored UTC timestamp into the target timezone
// for display.
func ConvertTime(utcTime time.Time, targetTimezone string) (time.Time, error) {
	if targetTimezone == "UTC" {
		return utcTime, nil
	}
	loc, err := time.LoadLocation(targetTimezone)
	if err != nil {
		return utcTime, fmt.Errorf("failed to load timezone %s: %w", targetTimezone, err)
	}
	return utcTime.In(loc), nil
}
