package values

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxProfileIDLength bounds generated and parsed profile IDs.
const MaxProfileIDLength = 64

var profileIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ProfileID identifies a Waybar profile within the repository.
// IDs are lowercase slugs and double as directory names.
type ProfileID struct {
	value string
}

// NewProfileID parses an existing profile ID.
func NewProfileID(id string) (ProfileID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ProfileID{}, fmt.Errorf("profile ID cannot be empty")
	}
	if len(id) > MaxProfileIDLength {
		return ProfileID{}, fmt.Errorf("profile ID %q exceeds %d characters", id, MaxProfileIDLength)
	}
	if !profileIDPattern.MatchString(id) {
		return ProfileID{}, fmt.Errorf("profile ID %q is invalid (lowercase letters, digits and single dashes only)", id)
	}
	return ProfileID{value: id}, nil
}

// ProfileIDFromName derives a stable ID from a human-readable profile name.
// "Gruvbox Dark!" becomes "gruvbox-dark".
func ProfileIDFromName(name string) (ProfileID, error) {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}

	slug := b.String()
	if len(slug) > MaxProfileIDLength {
		slug = strings.TrimRight(slug[:MaxProfileIDLength], "-")
	}
	if slug == "" {
		return ProfileID{}, fmt.Errorf("profile name %q does not contain any letters or digits", name)
	}
	return ProfileID{value: slug}, nil
}

// MustNewProfileID creates a ProfileID or panics (for tests/constants)
func MustNewProfileID(id string) ProfileID {
	pid, err := NewProfileID(id)
	if err != nil {
		panic(err)
	}
	return pid
}

// String returns the string representation
func (p ProfileID) String() string {
	return p.value
}

// IsEmpty returns true if this is the zero value
func (p ProfileID) IsEmpty() bool {
	return p.value == ""
}

// Equals checks if two profile IDs are equal
func (p ProfileID) Equals(other ProfileID) bool {
	return p.value == other.value
}

// Less orders profile IDs lexicographically.
func (p ProfileID) Less(other ProfileID) bool {
	return p.value < other.value
}

// MarshalText implements encoding.TextMarshaler so IDs work in JSON and YAML.
func (p ProfileID) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ProfileID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*p = ProfileID{}
		return nil
	}
	id, err := NewProfileID(string(data))
	if err != nil {
		return err
	}
	*p = id
	return nil
}
