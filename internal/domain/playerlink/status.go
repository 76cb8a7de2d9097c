package playerlink

import (
	"fmt"
	"strings"
)

// Status is the ordinal transfer status of a player; higher is firmer.
type Status int

const (
	StatusHearsay Status = iota
	StatusRumors
	StatusDeveloping
	StatusConfirmed
)

var statusNames = [...]string{
	StatusHearsay:    "hearsay",
	StatusRumors:     "rumors",
	StatusDeveloping: "developing",
	StatusConfirmed:  "confirmed",
}

var statusAliases = map[string]Status{
	"hearsay":     StatusHearsay,
	"rumors":      StatusRumors,
	"rumours":     StatusRumors,
	"rumor":       StatusRumors,
	"developing":  StatusDeveloping,
	"confirmed":   StatusConfirmed,
	"here we go":  StatusConfirmed,
	"here we go!": StatusConfirmed,
}

func ParseStatus(v string) (Status, error) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(v))]
	if !ok {
		return StatusHearsay, fmt.Errorf("invalid transfer status: %q", v)
	}
	return status, nil
}

func (s Status) Valid() bool {
	return s >= StatusHearsay && s <= StatusConfirmed
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// Label is the user facing name.
func (s Status) Label() string {
	if s == StatusConfirmed {
		return "here we go!"
	}
	return s.String()
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid transfer status: %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	status, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Direction is whether the player is moving to or away from the club.
// The empty value means unknown.
type Direction string

const (
	DirectionUnknown  Direction = ""
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

func ParseDirection(v string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(v))) {
	case DirectionIncoming:
		return DirectionIncoming, nil
	case DirectionOutgoing:
		return DirectionOutgoing, nil
	case DirectionUnknown:
		return DirectionUnknown, nil
	default:
		return DirectionUnknown, fmt.Errorf("invalid direction: %q", v)
	}
}

// Role is the relation of a club to the player.
type Role string

const (
	RoleCurrent     Role = "current"
	RoleDestination Role = "destination"
	RoleInterested  Role = "interested"
)

var AllRoles = map[Role]struct{}{
	RoleCurrent:     {},
	RoleDestination: {},
	RoleInterested:  {},
}

// ParseRole maps unknown or empty roles to interested.
func ParseRole(v string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(v)))
	if _, ok := AllRoles[role]; ok {
		return role
	}
	return RoleInterested
}
