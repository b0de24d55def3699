package egress

import (
	"errors"
	"testing"
	"time"
)

// These tests exercise EmbeddedTor without launching a daemon.
func TestEmbeddedTor(t *testing.T) {
	t.Parallel()

	t.Run("default timeout", func(t *testing.T) {
		t.Parallel()

		e := NewEmbeddedTor()
		if e.startupTimeout != 3*time.Minute {
			t.Errorf("expected default timeout 3m, got %v", e.startupTimeout)
		}
	})

	t.Run("WithStartupTimeout", func(t *testing.T) {
		t.Parallel()

		e := NewEmbeddedTor(WithStartupTimeout(time.Minute))
		if e.startupTimeout != time.Minute {
			t.Errorf("expected timeout 1m, got %v", e.startupTimeout)
		}
	})

	t.Run("unstarted instance", func(t *testing.T) {
		t.Parallel()

		e := NewEmbeddedTor()
		if e.IsRunning() {
			t.Error("expected IsRunning to be false before start")
		}
		if e.SocksAddr() != "" || e.ControlAddr() != "" {
			t.Error("expected empty addresses before start")
		}
		if err := e.Stop(); err != nil {
			t.Errorf("expected no error stopping unstarted instance, got %v", err)
		}
		if _, err := e.NewHTTPClient(); !errors.Is(err, ErrTorNotRunning) {
			t.Errorf("expected ErrTorNotRunning, got %v", err)
		}
	})
}
