// Package config holds the small set of environment/option helpers
// shared by renderer construction (spec ConfigOptions, §6).
package config

import (
	"os"
	"strings"
)

// DebugEnvVar is the environment variable that overrides the
// constructed debug flag.
const DebugEnvVar = "DEEPSEA_GRAPHICS_DEBUG"

// ResolveDebug applies the DEEPSEA_GRAPHICS_DEBUG override rule to a
// requested debug flag: "0", "off", or "false" (case-insensitive)
// force debug off; any other non-empty value forces it on; an unset
// variable leaves requested unchanged.
func ResolveDebug(requested bool) bool {
	v, ok := os.LookupEnv(DebugEnvVar)
	if !ok {
		return requested
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "off", "false":
		return false
	default:
		return true
	}
}
