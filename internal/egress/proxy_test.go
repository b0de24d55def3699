package egress

import (
	"context"
	"errors"
	"net"
	"testing"
)

// fakeProxy accepts one connection, reads the greeting and writes reply.
func fakeProxy(t *testing.T, reply []byte) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 3)
		_, _ = conn.Read(buf)
		_, _ = conn.Write(reply)
	}()

	return listener.Addr().String()
}

func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("OK for SOCKS5 without auth", func(t *testing.T) {
		t.Parallel()

		addr := fakeProxy(t, []byte{0x05, 0x00})
		if status := CheckProxy(context.Background(), addr); status != ProxyStatusOK {
			t.Errorf("expected OK, got %v", status)
		}
	})

	t.Run("WrongType for HTTP server", func(t *testing.T) {
		t.Parallel()

		addr := fakeProxy(t, []byte("HTTP/1.1 200 OK\r\n\r\n"))
		if status := CheckProxy(context.Background(), addr); status != ProxyStatusWrongType {
			t.Errorf("expected WrongType, got %v", status)
		}
	})

	t.Run("WrongType for SOCKS5 requiring auth", func(t *testing.T) {
		t.Parallel()

		addr := fakeProxy(t, []byte{0x05, 0xFF})
		if status := CheckProxy(context.Background(), addr); status != ProxyStatusWrongType {
			t.Errorf("expected WrongType, got %v", status)
		}
	})

	t.Run("CannotConnect for closed port", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatalf("failed to reserve port: %v", err)
		}
		addr := listener.Addr().String()
		_ = listener.Close()

		if status := CheckProxy(context.Background(), addr); status != ProxyStatusCannotConnect {
			t.Errorf("expected CannotConnect, got %v", status)
		}
	})
}

func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ProxyStatus
		str    string
		err    error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if err := tt.status.Error(); !errors.Is(err, tt.err) {
			t.Errorf("Error() = %v, want %v", err, tt.err)
		}
	}
	if ProxyStatus(99).String() != "unknown" {
		t.Error("unexpected string for unknown status")
	}
}
