package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusErrorClassification(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{401, ErrNotAuthenticated},
		{403, ErrForbidden},
		{404, ErrNotFound},
		{429, ErrRateLimited},
		{500, ErrServer},
		{503, ErrServer},
	}
	for _, tc := range cases {
		err := &StatusError{StatusCode: tc.code, Endpoint: "/notes"}
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d should match %v", tc.code, tc.want)
		}
	}

	// Other 4xx codes carry no sentinel; they stay plain HTTP errors.
	err := &StatusError{StatusCode: 422, Endpoint: "/notes"}
	for _, sentinel := range []error{ErrNotAuthenticated, ErrForbidden, ErrNotFound, ErrRateLimited, ErrServer} {
		if errors.Is(err, sentinel) {
			t.Errorf("422 should not match %v", sentinel)
		}
	}
}

func TestIsConnectivity(t *testing.T) {
	connErr := &ConnectivityError{Endpoint: "/chat", Err: errors.New("connection refused")}
	if !IsConnectivity(connErr) {
		t.Fatal("direct connectivity error not recognized")
	}
	if !IsConnectivity(fmt.Errorf("send: %w", connErr)) {
		t.Fatal("wrapped connectivity error not recognized")
	}
	if IsConnectivity(&StatusError{StatusCode: 500, Endpoint: "/chat"}) {
		t.Fatal("server error misclassified as connectivity")
	}
}
