package roster

import "fmt"

// Status represents a participant's current attendance intent.
type Status string

const (
	StatusPlaying    Status = "playing"
	StatusNotPlaying Status = "not_playing"
	StatusMaybe      Status = "maybe"
)

// ErrUnknownStatusToken is returned when a transport token does not map to a status.
var ErrUnknownStatusToken = fmt.Errorf("unknown status token")

// ParseStatusToken maps a transport-level action token to a Status.
// Tokens are validated here, at the boundary, so the engine only ever
// sees one of the three closed variants.
func ParseStatusToken(token string) (Status, error) {
	switch token {
	case "play":
		return StatusPlaying, nil
	case "cancel":
		return StatusNotPlaying, nil
	case "maybe":
		return StatusMaybe, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatusToken, token)
	}
}

// Valid reports whether s is one of the three known variants.
func (s Status) Valid() bool {
	switch s {
	case StatusPlaying, StatusNotPlaying, StatusMaybe:
		return true
	}
	return false
}
