package client

import (
	"errors"
	"net/http"
)

var ErrSessionExpired = errors.New("session expired")

// AuthTransport is the single place that deals with credentials. It signs
// every request with the stored token and turns any 401 into
// ErrSessionExpired after clearing the session and firing OnExpired.
type AuthTransport struct {
	Base      http.RoundTripper
	Sessions  SessionStore
	OnExpired func()
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if s, err := t.Sessions.Load(); err == nil {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		_ = t.Sessions.Clear()
		if t.OnExpired != nil {
			t.OnExpired()
		}
		return nil, ErrSessionExpired
	}
	return resp, nil
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
