// Package config reads the SMARTPTR_DEBUG environment variable.
//
// The format follows GODEBUG: a comma-separated list of key=value pairs.
//
//	SMARTPTR_DEBUG=track=1,stackdepth=16,log=1
//
// Keys:
//   - track: install the allocation-site tracker (0 or 1)
//   - log: install the debug log observer (0 or 1)
//   - stackdepth: frames recorded per allocation (1..32, default 8)
//
// Unknown keys are ignored and malformed values keep the default, so a
// typo never breaks a program that merely imports the library.
package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvVar is the environment variable consulted by FromEnv.
const EnvVar = "SMARTPTR_DEBUG"

const (
	defaultStackDepth = 8
	maxStackDepth     = 32
)

// Debug holds the parsed settings.
type Debug struct {
	Track      bool
	Log        bool
	StackDepth int
}

// Default returns the settings used when SMARTPTR_DEBUG is unset.
func Default() Debug {
	return Debug{StackDepth: defaultStackDepth}
}

// FromEnv parses SMARTPTR_DEBUG.
func FromEnv() Debug {
	v, ok := os.LookupEnv(EnvVar)
	if !ok {
		return Default()
	}
	return Parse(v)
}

// Parse parses a SMARTPTR_DEBUG value.
func Parse(s string) Debug {
	d := Default()
	for _, field := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(field), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "track":
			d.Track = parseBool(value, d.Track)
		case "log":
			d.Log = parseBool(value, d.Log)
		case "stackdepth":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err == nil && n >= 1 && n <= maxStackDepth {
				d.StackDepth = n
			}
		}
	}
	return d
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return b
}
