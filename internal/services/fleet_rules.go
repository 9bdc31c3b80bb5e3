package services

import (
	"regexp"
	"strings"
)

// vfrExcludedTypes are light GA types not permitted for scheduled operations.
var vfrExcludedTypes = map[string]bool{
	"C172": true,
	"C152": true,
	"C208": true,
	"SR22": true,
	"TBM9": true,
	"XCUB": true,
}

var typeNormalizer = strings.NewReplacer(" ", "", "-", "", "_", "")

// IsRestrictedWideBody fuzzy-matches the banned A380 family: catches A380,
// A388, A-380, "Airbus 380" and similar spellings.
func IsRestrictedWideBody(aircraftType string) bool {
	normalized := strings.ToUpper(typeNormalizer.Replace(aircraftType))
	return strings.Contains(normalized, "A380") ||
		strings.Contains(normalized, "A388") ||
		strings.Contains(normalized, "380")
}

// IsVFRExcluded reports whether the type sits in the VFR exclusion set.
func IsVFRExcluded(aircraftType string) bool {
	return vfrExcludedTypes[strings.ToUpper(strings.TrimSpace(aircraftType))]
}

var icaoStationPattern = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// ValidStationCode reports whether s is a well-formed ICAO station code.
func ValidStationCode(s string) bool {
	return icaoStationPattern.MatchString(strings.ToUpper(s))
}

// trackerLinkPattern allow-lists the external IVAO tracker domain for manual
// submission proof links.
var trackerLinkPattern = regexp.MustCompile(`(?i)^https?://(tracker\.ivao\.aero)/.+`)

func ValidTrackerLink(link string) bool {
	return trackerLinkPattern.MatchString(link)
}
