package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard_Decide(t *testing.T) {
	g := DefaultGuard()

	tests := []struct {
		name          string
		path          string
		authenticated bool
		wantAllowed   bool
		wantRedirect  string
	}{
		{"public auth page", "/auth", false, true, ""},
		{"public callback", "/auth/callback", false, true, ""},
		{"public api", "/api/auth/signin", false, true, ""},
		{"protected without session", "/analytics", false, false, "/auth?redirectTo=%2Fanalytics"},
		{"protected subpath", "/settings/profile", false, false, "/auth?redirectTo=%2Fsettings%2Fprofile"},
		{"protected with session", "/analytics", true, true, ""},
		{"unlisted route", "/", false, true, ""},
		{"public while signed in", "/auth", true, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redirect, allowed := g.Decide(tt.path, tt.authenticated)
			assert.Equal(t, tt.wantAllowed, allowed)
			assert.Equal(t, tt.wantRedirect, redirect)
		})
	}
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/analytics", SafeRedirect("/analytics"))
	assert.Equal(t, "/", SafeRedirect(""))
	assert.Equal(t, "/", SafeRedirect("https://evil.example"))
	assert.Equal(t, "/", SafeRedirect("//evil.example"))
}

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	assert.NoError(t, err)
	b, err := NewToken()
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}
