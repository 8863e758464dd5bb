// ABOUTME: Tests for client construction and configuration wiring
// ABOUTME: Covers request timeout resolution from the environment

package cmd

import (
	"testing"
	"time"
)

func TestNewClientUsesConfiguredTimeout(t *testing.T) {
	t.Setenv("APPTEMPLATE_REQUEST_TIMEOUT", "5")

	c := newClient()
	if got := c.Timeout(); got != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", got)
	}
}

func TestNewClientDefaultTimeout(t *testing.T) {
	t.Setenv("APPTEMPLATE_REQUEST_TIMEOUT", "")

	c := newClient()
	if got := c.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", got)
	}
}

func TestNewClientFallsBackOnOutOfRangeTimeout(t *testing.T) {
	t.Setenv("APPTEMPLATE_REQUEST_TIMEOUT", "0")

	c := newClient()
	if got := c.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s fallback", got)
	}
}
