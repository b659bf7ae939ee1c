package main

import "testing"

// -ldflags "-X main.version=..." only applies to package-level string vars.
func TestVersionIsLinkerSettable(t *testing.T) {
	orig := version
	t.Cleanup(func() { version = orig })

	version = "1.2.3"
	if version != "1.2.3" {
		t.Errorf("version = %q; want 1.2.3", version)
	}
	if orig != "dev" {
		t.Errorf("default version = %q; want dev", orig)
	}
}
