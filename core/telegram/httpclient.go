package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/reviewbot/core/telegram/netutil"
)

const (
	dialTimeout      = 5 * time.Second
	tlsTimeout       = 5 * time.Second
	keepAlive        = 30 * time.Second
	idleConnTimeout  = 90 * time.Second
	responseHeadroom = 10 * time.Second
	dialRetries      = 2
	dialBackoff      = 500 * time.Millisecond
)

// BuildHTTPClient returns the client used for Bot API calls. pollTimeout is
// the long polling timeout; getUpdates may legitimately hold the response
// for that long, so header and client deadlines are extended by it.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	if pollTimeout < 0 {
		pollTimeout = 0
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsTimeout,
		ResponseHeaderTimeout: pollTimeout + responseHeadroom,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   pollTimeout + 2*responseHeadroom,
		Transport: &dialRetryTransport{base: transport, retries: dialRetries, backoff: dialBackoff},
	}
}

// dialRetryTransport retries requests whose connection could not be
// established. Anything that may have reached Telegram is returned as is:
// a resent sendMessage would show up twice in the chat.
type dialRetryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *dialRetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= t.retries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(t.backoff * time.Duration(attempt))
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}
		}

		r := req
		if attempt > 0 && req.Body != nil {
			if req.GetBody == nil {
				return nil, lastErr
			}
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r = req.Clone(req.Context())
			r.Body = body
		}

		resp, err := t.base.RoundTrip(r)
		if err == nil || !netutil.IsDialError(err) {
			return resp, err
		}
		lastErr = err
	}
	return nil, lastErr
}
