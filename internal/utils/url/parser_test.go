package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://localhost:4200/",
		"https://example.com/path",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"http://host/", "status/Lens", "http://host/status/Lens"},
		{"http://host/", "/status/Lamp", "http://host/status/Lamp"},
		{"http://host/a/b/", "../status/./Fans", "http://host/a/status/Fans"},
		{"http://host/", "https://other.example/x", "https://other.example/x"},
	}
	for _, tt := range tests {
		if got := ResolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestRouteFragment(t *testing.T) {
	for _, in := range []string{"#/status/Lamp", "/status/Lamp", "status/Lamp", " #/status/Lamp "} {
		if got := RouteFragment(in); got != "#/status/Lamp" {
			t.Errorf("RouteFragment(%q) = %q", in, got)
		}
	}

	if !RouteMatches("http://localhost:4200/#/status/Lamp", "#/status/Lamp") {
		t.Error("expected route to match")
	}
	if RouteMatches("http://localhost:4200/#/dashboard", "#/status/Lamp") {
		t.Error("expected route not to match")
	}
}
