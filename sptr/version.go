package sptr

// Version information for the sptr package.
const (
	// Version is the current library version.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides build and runtime information about the library.
type Info struct {
	// Version is the library version string.
	Version string

	// Counting describes the reference counting discipline.
	Counting string

	// Tracking indicates whether allocation tracking is active.
	Tracking bool
}

// GetInfo returns information about the library.
//
// Example:
//
//	info := sptr.GetInfo()
//	fmt.Printf("sptr %s (%s)\n", info.Version, info.Counting)
func GetInfo() Info {
	return Info{
		Version:  Version,
		Counting: "non-atomic",
		Tracking: Tracking(),
	}
}
