package http

import (
	"net"
	"net/http"
	"time"
)

// TransportFunc decorates the round tripper of a connector client
type TransportFunc func(http.RoundTripper) http.RoundTripper

// HttpOpts tunes the client built by NewConnector
type HttpOpts func(*clientSettings)

type clientSettings struct {
	dial           time.Duration
	keepAlive      time.Duration
	request        time.Duration
	tlsHandshake   time.Duration
	responseHeader time.Duration
	idleConn       time.Duration

	idlePerHost int
	wrappers    []TransportFunc
}

var defaultClientSettings = clientSettings{
	dial:           10 * time.Second,
	keepAlive:      90 * time.Second,
	request:        30 * time.Second,
	tlsHandshake:   10 * time.Second,
	responseHeader: 20 * time.Second,
	idleConn:       90 * time.Second,
	idlePerHost:    10,
}

// overrideDuration keeps the default for zero or negative values, so an
// unset env variable never disables a timeout.
func overrideDuration(field func(*clientSettings) *time.Duration, d time.Duration) HttpOpts {
	return func(s *clientSettings) {
		if d > 0 {
			*field(s) = d
		}
	}
}

func WithConnClientTimeout(d time.Duration) HttpOpts {
	return overrideDuration(func(s *clientSettings) *time.Duration { return &s.dial }, d)
}

// WithRequestTimeout bounds the whole exchange including reading the body.
func WithRequestTimeout(d time.Duration) HttpOpts {
	return overrideDuration(func(s *clientSettings) *time.Duration { return &s.request }, d)
}

func WithClientKeepAlive(d time.Duration) HttpOpts {
	return overrideDuration(func(s *clientSettings) *time.Duration { return &s.keepAlive }, d)
}

// WithResponseHeaderTimeout must stay above the slowest LLM answer.
func WithResponseHeaderTimeout(d time.Duration) HttpOpts {
	return overrideDuration(func(s *clientSettings) *time.Duration { return &s.responseHeader }, d)
}

func WithIdleConnTimeout(d time.Duration) HttpOpts {
	return overrideDuration(func(s *clientSettings) *time.Duration { return &s.idleConn }, d)
}

// WithTransport wraps the client transport. Wrappers apply in the order given,
// so the last one added sees the request first.
func WithTransport(wrap TransportFunc) HttpOpts {
	return func(s *clientSettings) {
		s.wrappers = append(s.wrappers, wrap)
	}
}

func newClient(opts ...HttpOpts) *http.Client {
	s := defaultClientSettings
	s.wrappers = nil
	for _, opt := range opts {
		opt(&s)
	}

	dialer := &net.Dialer{Timeout: s.dial, KeepAlive: s.keepAlive}
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.DialContext = dialer.DialContext
	base.MaxIdleConnsPerHost = s.idlePerHost
	base.TLSHandshakeTimeout = s.tlsHandshake
	base.ResponseHeaderTimeout = s.responseHeader
	base.IdleConnTimeout = s.idleConn

	var rt http.RoundTripper = base
	for _, wrap := range s.wrappers {
		rt = wrap(rt)
	}
	return &http.Client{Timeout: s.request, Transport: rt}
}
