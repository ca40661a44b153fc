package jikan

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
)

func TestNetworkError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *NetworkError
		expected string
	}{
		{
			name: "error with wrapped error",
			err: &NetworkError{
				StatusCode: 0,
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			expected: "jikan network error (status 0): request failed: connection refused",
		},
		{
			name: "status error",
			err: &NetworkError{
				StatusCode: 429,
				ErrorClass: ErrorClassRateLimit,
				Message:    "429 Too Many Requests",
			},
			expected: "jikan rate_limit error (status 429): 429 Too Many Requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	wrapped := io.ErrUnexpectedEOF
	err := error(&NetworkError{ErrorClass: ErrorClassDecode, Err: wrapped})

	if !errors.Is(err, wrapped) {
		t.Error("errors.Is should reach wrapped error")
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) || netErr.ErrorClass != ErrorClassDecode {
		t.Errorf("errors.As() = %v, want decode NetworkError", netErr)
	}
}

func TestClassifyError(t *testing.T) {
	client := &Client{logger: zerolog.Nop()}

	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   ErrorClass
	}{
		{name: "network error", err: io.EOF, expected: ErrorClassNetwork},
		{name: "client error 404", statusCode: 404, expected: ErrorClassClient},
		{name: "client error 400", statusCode: 400, expected: ErrorClassClient},
		{name: "rate limit 429", statusCode: 429, expected: ErrorClassRateLimit},
		{name: "server error 500", statusCode: 500, expected: ErrorClassServer},
		{name: "server error 503", statusCode: 503, expected: ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.statusCode > 0 {
				resp = &http.Response{StatusCode: tt.statusCode}
			}
			if got := client.classifyError(resp, tt.err); got != tt.expected {
				t.Errorf("classifyError() = %q, want %q", got, tt.expected)
			}
		})
	}
}
