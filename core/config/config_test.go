package config

import (
	"os"
	"testing"
)

func TestResolveDebug(t *testing.T) {
	os.Unsetenv(DebugEnvVar)
	if !ResolveDebug(true) {
		t.Fatal("unset env: expected requested value to pass through")
	}

	t.Setenv(DebugEnvVar, "off")
	if ResolveDebug(true) {
		t.Fatal("off: expected false")
	}

	t.Setenv(DebugEnvVar, "0")
	if ResolveDebug(true) {
		t.Fatal("0: expected false")
	}

	t.Setenv(DebugEnvVar, "FALSE")
	if ResolveDebug(true) {
		t.Fatal("FALSE: expected false")
	}

	t.Setenv(DebugEnvVar, "1")
	if !ResolveDebug(false) {
		t.Fatal("1: expected true")
	}

	t.Setenv(DebugEnvVar, "anything")
	if !ResolveDebug(false) {
		t.Fatal("anything: expected true")
	}
}
