package domain

import "fmt"

// Platform is the target platform of an application
type Platform string

const (
	PlatformWind     Platform = "wind"
	PlatformSteam    Platform = "steam"
	PlatformDiesel   Platform = "diesel"
	PlatformStirling Platform = "stirling"
	PlatformNuclear  Platform = "nuclear"
	PlatformElectric Platform = "electric"
)

// DefaultPlatform is used when an application is created without one
const DefaultPlatform = PlatformWind

// Platforms returns every supported platform in declaration order
func Platforms() []Platform {
	return []Platform{
		PlatformWind,
		PlatformSteam,
		PlatformDiesel,
		PlatformStirling,
		PlatformNuclear,
		PlatformElectric,
	}
}

// String implements the Stringer interface
func (p Platform) String() string {
	return string(p)
}

// IsValid checks if the Platform is one of the supported values
func (p Platform) IsValid() bool {
	switch p {
	case PlatformWind, PlatformSteam, PlatformDiesel, PlatformStirling, PlatformNuclear, PlatformElectric:
		return true
	default:
		return false
	}
}

// ParsePlatform parses a string into a Platform. An empty string yields the default platform.
func ParsePlatform(s string) (Platform, error) {
	if s == "" {
		return DefaultPlatform, nil
	}
	platform := Platform(s)
	if !platform.IsValid() {
		return "", fmt.Errorf("%w: invalid platform: %q", ErrValidation, s)
	}
	return platform, nil
}

// Operation is the kind of mutation recorded in the history log
type Operation int

const (
	OperationUnknown Operation = iota
	OperationInsert
	OperationUpdate
	OperationDelete
)

func (o Operation) String() string {
	switch o {
	case OperationInsert:
		return "insert"
	case OperationUpdate:
		return "update"
	case OperationDelete:
		return "delete"
	default:
		return "unknown"
	}
}

func ParseOperation(s string) (Operation, error) {
	switch s {
	case "insert":
		return OperationInsert, nil
	case "update":
		return OperationUpdate, nil
	case "delete":
		return OperationDelete, nil
	case "unknown":
		return OperationUnknown, nil
	default:
		return OperationUnknown, fmt.Errorf("invalid operation: %q", s)
	}
}

// Validity is the derived state of a release's references
type Validity int

const (
	// ValidityUnknown means the references could not be checked
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityDeposed
)

func (v Validity) String() string {
	switch v {
	case ValidityValid:
		return "valid"
	case ValidityDeposed:
		return "deposed"
	default:
		return "unknown"
	}
}
