package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc(t *testing.T) {
	t.Setenv("HTTP_PROXY", "")
	t.Setenv("HTTPS_PROXY", "")
	t.Setenv("NO_PROXY", "")
	t.Setenv("REQUEST_METHOD", "")

	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure-proxy.local:3128", "internal.example.org")

	cases := []struct {
		url  string
		want string
	}{
		{"http://example.org/config.json", "http://proxy.local:3128"},
		{"https://example.org/config.json", "http://secure-proxy.local:3128"},
		{"https://internal.example.org/config.json", ""},
	}

	for _, tc := range cases {
		req, err := http.NewRequest(http.MethodGet, tc.url, nil)
		if err != nil {
			t.Fatal(err)
		}
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s): %v", tc.url, err)
		}
		if tc.want == "" {
			if got != nil {
				t.Errorf("expected no proxy for %s, got %s", tc.url, got)
			}
			continue
		}
		if got == nil || got.String() != tc.want {
			t.Errorf("proxy(%s) = %v, want %s", tc.url, got, tc.want)
		}
	}
}

func TestNewProxyFunc_EnvironmentFallback(t *testing.T) {
	t.Setenv("HTTP_PROXY", "http://env-proxy.local:8080")
	t.Setenv("HTTPS_PROXY", "")
	t.Setenv("NO_PROXY", "")
	t.Setenv("REQUEST_METHOD", "")

	proxy := NewProxyFunc("", "", "")
	req, _ := http.NewRequest(http.MethodGet, "http://example.org/colors.json", nil)
	got, err := proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Host != "env-proxy.local:8080" {
		t.Errorf("expected environment proxy, got %v", got)
	}
}
