package cloud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testCredentials = `{"installed":{
  "client_id":"123.apps.googleusercontent.com",
  "client_secret":"secret",
  "auth_uri":"https://accounts.google.com/o/oauth2/auth",
  "token_uri":"https://oauth2.googleapis.com/token",
  "redirect_uris":["http://localhost"]}}`

func TestHTTPProbe_Online(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.True(t, NewHTTPProbe(srv.URL, time.Second).Online(context.Background()))
}

func TestHTTPProbe_ErrorStatusStillOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	assert.True(t, NewHTTPProbe(srv.URL, time.Second).Online(context.Background()))
}

func TestHTTPProbe_Offline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.False(t, NewHTTPProbe(url, time.Second).Online(context.Background()))
	assert.False(t, NewHTTPProbe("://bad", time.Second).Online(context.Background()))
}

func TestConnectivityFunc(t *testing.T) {
	var c Connectivity = ConnectivityFunc(func(context.Context) bool { return false })
	assert.False(t, c.Online(context.Background()))
}

func TestNewDrive_Unconfigured(t *testing.T) {
	assert.False(t, NewDrive("", "token.json").Configured())
	assert.False(t, NewDrive(filepath.Join(t.TempDir(), "missing.json"), "token.json").Configured())

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	assert.False(t, NewDrive(bad, "token.json").Configured())
}

func newTestDrive(t *testing.T) (*Drive, string) {
	t.Helper()
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte(testCredentials), 0o600))
	token := filepath.Join(dir, "auth", "token.json")
	return NewDrive(creds, token), token
}

func TestDrive_SignInWithoutToken(t *testing.T) {
	d, _ := newTestDrive(t)
	require.True(t, d.Configured())
	assert.Contains(t, d.AuthURL("state-1"), "state=state-1")

	_, err := d.SignIn(context.Background())
	assert.ErrorIs(t, err, apierror.ErrNotSignedIn)

	_, err = d.Download(context.Background())
	assert.ErrorIs(t, err, apierror.ErrNotSignedIn)
}

func TestDrive_TokenRoundTripAndSignOut(t *testing.T) {
	d, path := newTestDrive(t)
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}
	require.NoError(t, d.saveToken(tok))

	got, err := d.loadToken()
	require.NoError(t, err)
	assert.Equal(t, "r", got.RefreshToken)

	require.NoError(t, d.SignOut(context.Background()))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// signing out twice is fine
	require.NoError(t, d.SignOut(context.Background()))
}
