package auth0

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsMissing(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  []string
	}{
		{
			name:  "all present",
			creds: Credentials{Domain: "d", ClientID: "i", ClientSecret: "s"},
			want:  nil,
		},
		{
			name:  "all missing",
			creds: Credentials{},
			want:  []string{"domain", "client-id", "client-secret"},
		},
		{
			name:  "secret missing",
			creds: Credentials{Domain: "d", ClientID: "i"},
			want:  []string{"client-secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.creds.Missing())
		})
	}
}

func TestTokenSuccess(t *testing.T) {
	var gotPath, gotGrant, gotAudience, gotClientID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotGrant = r.FormValue("grant_type")
		gotAudience = r.FormValue("audience")
		gotClientID = r.FormValue("client_id")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":86400}`))
	}))
	defer srv.Close()

	f := &Fetcher{BaseURL: srv.URL}
	token, err := f.Token(context.Background(), Credentials{
		Domain:       "dev-xxx.us.auth0.com",
		ClientID:     "cid",
		ClientSecret: "csecret",
	})

	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	assert.Equal(t, "/oauth/token", gotPath)
	assert.Equal(t, "client_credentials", gotGrant)
	assert.Equal(t, "https://dev-xxx.us.auth0.com/api/v2/", gotAudience)
	assert.Equal(t, "cid", gotClientID)
}

func TestTokenHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"access_denied","error_description":"bad secret"}`))
	}))
	defer srv.Close()

	f := &Fetcher{BaseURL: srv.URL}
	_, err := f.Token(context.Background(), Credentials{
		Domain:       "dev-xxx.us.auth0.com",
		ClientID:     "cid",
		ClientSecret: "wrong",
	})

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "access_denied")
	assert.Contains(t, httpErr.Error(), "401")
}

func TestTokenTransportError(t *testing.T) {
	// Nothing listens here.
	f := &Fetcher{BaseURL: "http://127.0.0.1:1"}
	_, err := f.Token(context.Background(), Credentials{
		Domain:       "dev-xxx.us.auth0.com",
		ClientID:     "cid",
		ClientSecret: "csecret",
	})

	require.Error(t, err)
	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr), "transport failures must not be HTTPError")
	assert.Contains(t, err.Error(), "token request failed")
}
