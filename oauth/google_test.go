package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestGoogle(t *testing.T, profile map[string]any) *Google {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogle("cid", "secret", "http://localhost/callback")
	g.Config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.UserInfoURL = srv.URL + "/userinfo"
	return g
}

func TestGoogle_Exchange(t *testing.T) {
	g := newTestGoogle(t, map[string]any{
		"id": "g-1", "email": "ann@example.com", "verified_email": true, "name": "Ann", "picture": "https://img/ann.png",
	})

	p, err := g.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "g-1", p.ID)
	assert.Equal(t, "ann@example.com", p.Email)
	assert.True(t, p.VerifiedEmail)
}

func TestGoogle_ExchangeRequiresEmail(t *testing.T) {
	g := newTestGoogle(t, map[string]any{"id": "g-2", "name": "NoMail"})

	_, err := g.Exchange(context.Background(), "the-code")
	assert.Error(t, err)
}

func TestGoogle_AuthCodeURL(t *testing.T) {
	g := NewGoogle("cid", "secret", "http://localhost/callback")
	u, err := url.Parse(g.AuthCodeURL("st4te"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "st4te", q.Get("state"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "http://localhost/callback", q.Get("redirect_uri"))
}
