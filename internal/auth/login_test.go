package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/law-makers/dashscrape/internal/browser"
	"github.com/law-makers/dashscrape/internal/wait"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loginPage routes to #/dashboard only for the right password
const loginPage = `<!DOCTYPE html>
<html><body>
<form onsubmit="return false">
	<input id="login-username-text-input" value="prefilled">
	<input id="login-password-text-input" type="password">
	<button id="submit-button" type="button" onclick="
		const u = document.getElementById('login-username-text-input').value;
		const p = document.getElementById('login-password-text-input').value;
		if (u === 'service' && p === 'service') location.hash = '#/dashboard';
	">Sign in</button>
</form>
</body></html>`

var testForm = Form{
	UsernameSelector: "#login-username-text-input",
	PasswordSelector: "#login-password-text-input",
	SubmitSelector:   "#submit-button",
	DashboardMarker:  "dashboard",
}

func newLoginSession(t *testing.T) (*browser.Session, string) {
	t.Helper()
	if browser.FindChrome("") == "" {
		t.Skip("Chrome not found")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(loginPage))
	}))
	t.Cleanup(srv.Close)

	s, err := browser.Open(context.Background(), browser.Options{
		Headless:     true,
		Timeout:      2 * time.Second,
		PollInterval: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, srv.URL + "/"
}

func TestLogin(t *testing.T) {
	s, base := newLoginSession(t)

	err := Login(context.Background(), s, base, testForm, Credentials{Username: "service", Password: "service"})
	require.NoError(t, err)

	loc, err := s.Location(context.Background())
	require.NoError(t, err)
	assert.Contains(t, loc, "dashboard")
}

func TestLogin_WrongPassword(t *testing.T) {
	s, base := newLoginSession(t)

	err := Login(context.Background(), s, base, testForm, Credentials{Username: "service", Password: "nope"})
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.ErrorIs(t, err, wait.ErrTimeout)
}

func TestLoginError_KeepsCause(t *testing.T) {
	err := loginError("dashboard not reached", fmt.Errorf("wait for url: %w", wait.ErrTimeout))

	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.ErrorIs(t, err, wait.ErrTimeout)
	assert.Contains(t, err.Error(), "dashboard not reached")

	err = loginError("open login page", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
}
