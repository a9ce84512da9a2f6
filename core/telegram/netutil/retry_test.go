package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassification(t *testing.T) {
	dial := &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}
	dns := &net.DNSError{Err: "no such host", Name: "api.telegram.org"}
	readTimeout := &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: &net.OpError{Op: "read", Net: "tcp", Err: timeoutErr{}}}
	apiErr := fmt.Errorf("telegram: Bad Request: chat not found (400)")

	cases := []struct {
		name        string
		err         error
		retry, dial bool
	}{
		{"nil", nil, false, false},
		{"dial", dial, true, true},
		{"dns", dns, true, true},
		{"read timeout", readTimeout, true, false},
		{"deadline", context.DeadlineExceeded, true, false},
		{"api", apiErr, false, false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.retry {
			t.Errorf("%s: ShouldRetry = %v, want %v", tc.name, got, tc.retry)
		}
		if got := IsDialError(tc.err); got != tc.dial {
			t.Errorf("%s: IsDialError = %v, want %v", tc.name, got, tc.dial)
		}
	}
}
