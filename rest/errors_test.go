package rest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "argument",
			err:  &ArgumentError{Arg: "url", Msg: "must not be empty"},
			want: "rest: invalid argument url: must not be empty",
		},
		{
			name: "argument with cause",
			err:  &ArgumentError{Arg: "body", Err: errors.New("boom")},
			want: "rest: invalid argument body: boom",
		},
		{
			name: "status",
			err:  &TransportError{Method: "GET", URL: "http://api.test/x", StatusCode: 404, Err: ErrStatus},
			want: "rest: GET http://api.test/x: unsuccessful status code (404)",
		},
		{
			name: "transport",
			err:  &TransportError{Method: "POST", URL: "http://api.test/", Err: errors.New("connection refused")},
			want: "rest: POST http://api.test/: connection refused",
		},
		{
			name: "serialization",
			err:  &SerializationError{Response: "oops", Err: errors.New("invalid character 'o'")},
			want: "rest: error when attempting to deserialize response: invalid character 'o'",
		},
		{
			name: "cancellation",
			err:  &CancellationError{Method: "GET", URL: "http://api.test/", Err: context.Canceled},
			want: "rest: GET http://api.test/: canceled: context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(&TransportError{StatusCode: 404, Err: ErrStatus}))
	assert.Equal(t, http.StatusOK, StatusCode(&SerializationError{StatusCode: 200, Err: errors.New("x")}))
	assert.Zero(t, StatusCode(&ArgumentError{Arg: "url"}))
	assert.Zero(t, StatusCode(nil))
}

func TestTransportError_Timeout(t *testing.T) {
	assert.True(t, (&TransportError{Err: context.DeadlineExceeded}).Timeout())
	assert.False(t, (&TransportError{Err: errors.New("refused")}).Timeout())
	assert.False(t, (&TransportError{Err: ErrStatus}).Timeout())
}
