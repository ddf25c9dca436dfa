package burrow

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil stays nil", nil, ""},
		{"connection refused", syscall.ECONNREFUSED, KindConnection},
		{"connection reset", syscall.ECONNRESET, KindConnection},
		{"net op error", &net.OpError{Op: "dial", Err: errors.New("down")}, KindConnection},
		{"deadline", context.DeadlineExceeded, KindConnection},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("Classify(nil) = %#v, want nil", got)
				}
				return
			}
			if got.Kind != tt.want {
				t.Fatalf("Classify(%v).Kind = %q, want %q", tt.err, got.Kind, tt.want)
			}
			if got.Message == "" {
				t.Fatalf("Classify(%v) produced empty message", tt.err)
			}
		})
	}
}

func TestClassify_PassesThroughAPIError(t *testing.T) {
	orig := &APIError{Kind: KindAuth, Code: "bad_token", Message: "authentication failed"}
	wrapped := errors.Join(errors.New("request failed"), orig)
	got := Classify(wrapped)
	if got != orig {
		t.Fatalf("Classify did not pass through existing *APIError: %#v", got)
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindInvalid},
		{http.StatusUnprocessableEntity, KindInvalid},
		{http.StatusServiceUnavailable, KindConnection},
		{http.StatusInternalServerError, KindInternal},
	}
	for _, tt := range tests {
		got := statusError(tt.status, errorBody{})
		if got.Kind != tt.want {
			t.Errorf("statusError(%d).Kind = %q, want %q", tt.status, got.Kind, tt.want)
		}
		if got.Message == "" {
			t.Errorf("statusError(%d) has empty message", tt.status)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	if IsConnectionError(nil) {
		t.Fatal("IsConnectionError(nil) = true, want false")
	}
	if !IsConnectionError(syscall.ECONNREFUSED) {
		t.Fatal("IsConnectionError(ECONNREFUSED) = false, want true")
	}
	if IsConnectionError(errors.New("boom")) {
		t.Fatal("IsConnectionError(plain) = true, want false")
	}
}
