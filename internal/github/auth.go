package github

import (
	"encoding/base64"
	"net/http"

	"github.com/andywolf/ghcomment/internal/credentials"
)

// BasicAuthTransport signs every request with a Basic Authorization header
// built from the credential source at send time. The header is never cached,
// so a credential change only affects requests sent after it.
type BasicAuthTransport struct {
	Source    credentials.Source
	Transport http.RoundTripper
}

// RoundTrip clones req, attaches the header and delegates to the base transport.
func (t *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	creds := t.Source.Get()

	// RoundTrippers must not modify the caller's request.
	r2 := req.Clone(req.Context())
	r2.Header.Set("Authorization", BasicAuthHeader(creds))

	return t.transport().RoundTrip(r2)
}

// Client returns an *http.Client that uses the transport.
func (t *BasicAuthTransport) Client() *http.Client {
	return &http.Client{Transport: t}
}

func (t *BasicAuthTransport) transport() http.RoundTripper {
	if t.Transport != nil {
		return t.Transport
	}
	return http.DefaultTransport
}

// BasicAuthHeader returns "Basic base64(username:secret)".
func BasicAuthHeader(creds credentials.Credentials) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds.Username+":"+creds.Secret))
}
