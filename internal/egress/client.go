package egress

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/phishguard/internal/lexical"
)

// Defaults for NewHTTPClient.
const (
	DefaultTimeout      = 5 * time.Second
	DefaultMaxRedirects = 5
)

// DialContextFunc dials a network address.
type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

type options struct {
	timeout      time.Duration
	maxRedirects int
	proxyAddress string
	dial         DialContextFunc
}

// Option configures NewHTTPClient.
type Option func(*options)

// WithTimeout sets the overall request timeout, redirects included.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxRedirects sets the redirect cap. Zero disables redirects.
func WithMaxRedirects(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRedirects = n
		}
	}
}

// WithSOCKS5 routes connections through the SOCKS5 proxy at addr.
// An empty addr means a direct connection.
func WithSOCKS5(addr string) Option {
	return func(o *options) {
		o.proxyAddress = addr
	}
}

// WithDialContext overrides how TCP connections are made.
// It takes precedence over WithSOCKS5.
func WithDialContext(dial DialContextFunc) Option {
	return func(o *options) {
		o.dial = dial
	}
}

// NewHTTPClient returns an HTTP client for page fetches.
//
// Exceeding the redirect cap fails the request with ErrTooManyRedirects
// instead of returning the last redirect response. A redirect to the local
// machine fails with ErrLoopbackRedirect, so an analysed page cannot bounce
// the fetch into services listening on loopback.
func NewHTTPClient(opts ...Option) (*http.Client, error) {
	o := &options{
		timeout:      DefaultTimeout,
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(o)
	}

	dial := o.dial
	if dial == nil && o.proxyAddress != "" {
		d, err := socks5Dialer(o.proxyAddress)
		if err != nil {
			return nil, err
		}
		dial = d
	}
	if dial == nil {
		dial = (&net.Dialer{Timeout: o.timeout}).DialContext
	}

	transport := &http.Transport{
		DialContext:           dial,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   o.timeout,
		ResponseHeaderTimeout: o.timeout,
	}

	maxRedirects := o.maxRedirects
	return &http.Client{
		Transport: transport,
		Timeout:   o.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, maxRedirects)
			}
			if lexical.IsLoopback(req.URL.String()) {
				return fmt.Errorf("%w: %s", ErrLoopbackRedirect, req.URL.Host)
			}
			return nil
		},
	}, nil
}

func socks5Dialer(addr string) (DialContextFunc, error) {
	if !IsValidProxyAddress(addr) {
		return nil, ErrInvalidProxyAddress
	}
	// Unauthenticated SOCKS5; Tor's SOCKS port accepts this by default.
	d, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		ch := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, address)
			ch <- dialResult{conn, err}
		}()
		select {
		case r := <-ch:
			return r.conn, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil
}

// IsValidProxyAddress reports whether addr is "host:port" with a port in 1-65535.
func IsValidProxyAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}
