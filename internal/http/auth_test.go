package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := srv.issueSession()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	if !srv.hasValidSession(req) {
		t.Fatalf("freshly issued session must verify")
	}
}

func TestSessionRejectsTampering(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := srv.issueSession()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"flipped sig":  token[:len(token)-2] + "xx",
		"alg stripped": strings.SplitN(token, ".", 2)[0],
		"wrong secret": mustSign(t, "other-secret"),
	}
	for name, value := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: value})
		if srv.hasValidSession(req) {
			t.Fatalf("%s: session must not verify", name)
		}
	}
}

func TestMissingCookieFailsVerification(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if srv.hasValidSession(req) {
		t.Fatalf("request without cookie must not verify")
	}
}

func mustSign(t *testing.T, secret string) string {
	t.Helper()
	other := &Server{sessionSecret: []byte(secret)}
	token, err := other.issueSession()
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}
