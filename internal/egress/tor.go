package egress

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nao1215/tornago"
)

// EmbeddedTor manages a Tor daemon started with tornago and hands out HTTP
// clients that route through its SOCKS port.
//
// Design decision: page fetches for suspected phishing sites can go
// through Tor so the target never sees the operator's address. The daemon
// is embedded instead of expected on the host:
//  1. --tor works without a system Tor installation or torrc
//  2. each phishguard process owns its daemon and stops it on exit
//  3. SOCKS and control ports are OS-assigned, so parallel runs never collide
//
// Clients from NewHTTPClient keep every policy of the package-level
// NewHTTPClient; only the dialer changes.
//
// Note: bootstrapping takes from several seconds to a few minutes while
// Tor fetches directory information and builds its first circuits. The
// CLI therefore starts one daemon per process, and only when --tor is set.
type EmbeddedTor struct {
	// process is the running daemon; nil until Start succeeds.
	process *tornago.TorProcess

	// socksAddr is the SOCKS5 listener that fetch clients dial through.
	socksAddr string

	// controlAddr is the control port, kept for diagnostics.
	controlAddr string

	// startupTimeout bounds how long Start waits for bootstrap.
	startupTimeout time.Duration
}

// TorOption configures an EmbeddedTor.
type TorOption func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) TorOption {
	return func(e *EmbeddedTor) {
		if timeout > 0 {
			e.startupTimeout = timeout
		}
	}
}

// NewEmbeddedTor creates an unstarted Tor manager.
func NewEmbeddedTor(opts ...TorOption) *EmbeddedTor {
	e := &EmbeddedTor{
		startupTimeout: 3 * time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon on OS-assigned ports and blocks until it has
// bootstrapped or the startup timeout elapses.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	select {
	case <-ctx.Done():
		_ = process.Stop() //nolint:errcheck // Best effort cleanup
		return ctx.Err()
	default:
	}

	e.process = process
	e.socksAddr = process.SocksAddr()
	e.controlAddr = process.ControlAddr()
	return nil
}

// Stop shuts the daemon down. Safe to call on an unstarted instance.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	e.socksAddr = ""
	e.controlAddr = ""
	return err
}

// SocksAddr returns the SOCKS5 address, or "" when not running.
func (e *EmbeddedTor) SocksAddr() string {
	return e.socksAddr
}

// ControlAddr returns the control port address, or "" when not running.
func (e *EmbeddedTor) ControlAddr() string {
	return e.controlAddr
}

// IsRunning reports whether the daemon is running.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// NewHTTPClient returns a page-fetch client that routes through the daemon.
func (e *EmbeddedTor) NewHTTPClient(opts ...Option) (*http.Client, error) {
	if !e.IsRunning() {
		return nil, ErrTorNotRunning
	}
	return NewHTTPClient(append(opts, WithSOCKS5(e.socksAddr))...)
}
