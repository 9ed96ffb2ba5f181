package headers

import (
	"reflect"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	in := []string{"X-Dashboard-Client: dashscrape", "Accept-Language: en-US", "X-Trace:  a:b "}
	out, err := ParseHeaders(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := map[string]string{
		"X-Dashboard-Client": "dashscrape",
		"Accept-Language":    "en-US",
		"X-Trace":            "a:b",
	}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("unexpected parse result: %#v", out)
	}
}

func TestParseHeaders_Invalid(t *testing.T) {
	for _, bad := range []string{"BadHeader", ": no-key"} {
		if _, err := ParseHeaders([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
