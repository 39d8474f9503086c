package http

import "net/http"

type headerTransport struct {
	headers   map[string]string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	for key, value := range t.headers {
		if value != "" && reqCopy.Header.Get(key) == "" {
			reqCopy.Header.Set(key, value)
		}
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends the token as a bearer Authorization header. An empty token sends nothing.
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return func(*clientSettings) {}
	}
	return withHeaders(map[string]string{"Authorization": "Bearer " + token})
}

func WithUserAgent(userAgent string) HttpOpts {
	return withHeaders(map[string]string{"User-Agent": userAgent})
}

func withHeaders(headers map[string]string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			headers:   headers,
			transport: rt,
		}
	})
}
