// Package protocol holds the pieces shared by the login and world
// services that aren't specific to either one: the client build flavor
// selector and the session-level error type.
package protocol

// Build selects which client build's wire quirks a session speaks:
// movement block layout, create-object payload shape, and header cipher
// key derivation all vary between 1.12.1 and 2.4.3.
type Build int

const (
	// BuildVanilla is client build 1.12.1.
	BuildVanilla Build = iota
	// BuildTBC is client build 2.4.3.
	BuildTBC
)

// String implements fmt.Stringer for logging and flag parsing errors.
func (b Build) String() string {
	switch b {
	case BuildVanilla:
		return "vanilla"
	case BuildTBC:
		return "tbc"
	default:
		return "unknown"
	}
}

// ParseBuild maps a config/flag value onto a Build, defaulting to an
// error for anything else so a typo in configuration fails fast at
// startup rather than silently picking a build flavor.
func ParseBuild(s string) (Build, error) {
	switch s {
	case "vanilla", "1.12.1":
		return BuildVanilla, nil
	case "tbc", "2.4.3":
		return BuildTBC, nil
	default:
		return 0, NewConfigurationError("unrecognized build flavor: " + s)
	}
}
