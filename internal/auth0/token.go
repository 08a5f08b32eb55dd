// Package auth0 implements the client-credentials token exchange against
// an Auth0 tenant's token endpoint.
package auth0

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTimeout bounds the whole token exchange.
const DefaultTimeout = 10 * time.Second

// Credentials identify the Auth0 application requesting a token.
type Credentials struct {
	Domain       string
	ClientID     string
	ClientSecret string
}

// Missing returns the names of required credential fields that are unset.
func (c Credentials) Missing() []string {
	var missing []string
	if c.Domain == "" {
		missing = append(missing, "domain")
	}
	if c.ClientID == "" {
		missing = append(missing, "client-id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client-secret")
	}
	return missing
}

// HTTPError is a non-2xx reply from the token endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("token endpoint returned HTTP %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Fetcher performs the client-credentials exchange. The zero value is usable.
type Fetcher struct {
	// BaseURL overrides the https://{domain} endpoint base. Tests point it
	// at a local server; production leaves it empty.
	BaseURL string

	// Timeout bounds the exchange. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Token exchanges the credentials for a management-API access token.
// The audience is derived from the domain per Auth0 convention. No retries:
// an upstream error status yields *HTTPError, anything else a wrapped
// transport error.
func (f *Fetcher) Token(ctx context.Context, creds Credentials) (string, error) {
	base := f.BaseURL
	if base == "" {
		base = "https://" + creds.Domain
	}
	audience := fmt.Sprintf("https://%s/api/v2/", creds.Domain)

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     base + "/oauth/token",
		AuthStyle:    oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			"audience": {audience},
		},
	}

	timeout := f.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})

	tok, err := cfg.Token(ctx)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return "", &HTTPError{
				StatusCode: rerr.Response.StatusCode,
				Body:       string(rerr.Body),
			}
		}
		return "", fmt.Errorf("token request failed: %w", err)
	}

	if tok.AccessToken == "" {
		return "", errors.New("token endpoint returned an empty access_token")
	}
	return tok.AccessToken, nil
}
