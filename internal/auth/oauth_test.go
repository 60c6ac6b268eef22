package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeGoogle(t *testing.T, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if verified {
			w.Write([]byte(`{"sub":"g-1","email":"sita@example.com","email_verified":true,"name":"Sita"}`))
		} else {
			w.Write([]byte(`{"sub":"g-1","email":"sita@example.com","email_verified":false}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testOAuth(srv *httptest.Server) *GoogleOAuth {
	g := NewGoogleOAuth("client", "secret", "http://localhost/callback")
	g.config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthURL: srv.URL + "/auth"}
	g.userInfoURL = srv.URL + "/userinfo"
	return g
}

func TestGoogleProfile(t *testing.T) {
	g := testOAuth(fakeGoogle(t, true))

	p, err := g.Profile(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "g-1", p.Subject)
	assert.Equal(t, "sita@example.com", p.Email)
	assert.Equal(t, "Sita", p.Name)
}

func TestGoogleProfile_UnverifiedEmail(t *testing.T) {
	g := testOAuth(fakeGoogle(t, false))

	_, err := g.Profile(context.Background(), "the-code")
	assert.ErrorContains(t, err, "not verified")
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	state, err := NewState()
	require.NoError(t, err)
	assert.Len(t, state, 32)

	u, err := url.Parse(NewGoogleOAuth("client", "secret", "http://localhost/callback").AuthCodeURL(state))
	require.NoError(t, err)
	assert.Equal(t, state, u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
}
