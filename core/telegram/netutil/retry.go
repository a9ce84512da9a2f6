// Package netutil classifies transport errors of Bot API calls.
package netutil

import (
	"errors"
	"net"
	"net/url"
)

// ShouldRetry reports whether a failed Bot API call is worth repeating:
// timeouts and connection failures, but not API errors.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if IsDialError(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// IsDialError reports whether err happened before a connection to the API
// existed, i.e. the request was certainly not delivered.
func IsDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
