package enums

import "fmt"

// CheckinType identifies the granularity of a check-in update. The register
// always checks people in against a single class occurrence.
type CheckinType string

const (
	CheckinTypeOccurrence CheckinType = "O"
	CheckinTypeEvent      CheckinType = "E"
)

var validCheckinTypes = []CheckinType{
	CheckinTypeOccurrence,
	CheckinTypeEvent,
}

// String implements fmt.Stringer.
func (c CheckinType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckinType.
func (c CheckinType) IsValid() bool {
	for _, candidate := range validCheckinTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckinType converts raw input into a CheckinType.
func ParseCheckinType(value string) (CheckinType, error) {
	for _, candidate := range validCheckinTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkin type %q", value)
}
