package auth

import (
	"net/url"
	"strings"
)

// Guard decides which request paths need a session.
type Guard struct {
	// Public prefixes bypass the check entirely.
	Public []string
	// Protected prefixes redirect unauthenticated requests to EntryPath.
	Protected []string
	EntryPath string
}

// DefaultGuard returns the application's route rules.
func DefaultGuard() Guard {
	return Guard{
		Public:    []string{"/auth", "/auth/callback", "/auth/signup", "/_next", "/api/auth", "/static", "/health", "/metrics"},
		Protected: []string{"/settings", "/analytics"},
		EntryPath: "/auth",
	}
}

// Decide returns whether a request for path may proceed. When it may not,
// redirect is the entry point with the original path as redirectTo.
func (g Guard) Decide(path string, authenticated bool) (redirect string, allowed bool) {
	for _, p := range g.Public {
		if strings.HasPrefix(path, p) {
			return "", true
		}
	}
	if authenticated {
		return "", true
	}
	for _, p := range g.Protected {
		if strings.HasPrefix(path, p) {
			return g.EntryPath + "?redirectTo=" + url.QueryEscape(path), false
		}
	}
	return "", true
}

// SafeRedirect returns target when it is a local absolute path, else "/".
func SafeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
