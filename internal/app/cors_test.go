package app

import "testing"

func TestMatchOriginPattern(t *testing.T) {
	cases := []struct {
		pattern string
		host    string
		want    bool
	}{
		{"app.example.com", "app.example.com", true},
		{"app.example.com", "evil.example.com", false},
		{"*.example.com", "app.example.com", true},
		{"*.example.com", "example.org", false},
		{"localhost:*", "localhost:5173", true},
		{"localhost:*", "remotehost:5173", false},
	}
	for _, tc := range cases {
		if got := matchOriginPattern(tc.pattern, tc.host); got != tc.want {
			t.Errorf("matchOriginPattern(%q, %q) = %v, want %v", tc.pattern, tc.host, got, tc.want)
		}
	}
}

func TestExtractOriginHost(t *testing.T) {
	if got := extractOriginHost("https://app.example.com:8443"); got != "app.example.com:8443" {
		t.Errorf("got %q", got)
	}
	if got := extractOriginHost("not a url"); got != "not a url" {
		t.Errorf("got %q, want passthrough", got)
	}
}
