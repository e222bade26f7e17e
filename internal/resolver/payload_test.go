package resolver

import (
	"errors"
	"testing"
)

func TestPayloadRoundTrip(t *testing.T) {
	ids := []string{"qrid_1", "qrid_8f3b2a9c", "with space", "a&b=c", "ধ্যায়", "x?y#z"}
	for _, id := range ids {
		payload := BuildPayload("https://shikho.com/", id)
		got, err := ParsePayload(payload)
		if err != nil {
			t.Fatalf("ParsePayload(%q): %v", payload, err)
		}
		if got != id {
			t.Errorf("round trip: want %q, got %q (payload %q)", id, got, payload)
		}
	}
}

func TestBuildPayload_Format(t *testing.T) {
	if got := BuildPayload("https://shikho.com", "qrid_1"); got != "https://shikho.com/qr?id=qrid_1" {
		t.Errorf("got %q", got)
	}
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"https://shikho.com/qr?id=qrid_1", "qrid_1", false},
		{"https://shikho.com/qr?src=print&id=qrid_2&v=1", "qrid_2", false},
		{"/qr?id=qrid_3#top", "qrid_3", false},
		{"id=qrid_4", "qrid_4", false},
		{"  https://shikho.com/qr?id=qrid_5\n", "qrid_5", false},
		{"https://shikho.com/qr?id=a&id=b", "a", false},
		{"https://shikho.com/qr", "", true},
		{"https://shikho.com/qr?qrid=1", "", true},
		{"https://shikho.com/qr?id=%zz", "", true},
		{"just text", "", true},
	}
	for _, tc := range tests {
		got, err := ParsePayload(tc.in)
		if tc.err {
			if !errors.Is(err, ErrNoID) {
				t.Errorf("ParsePayload(%q): want ErrNoID, got %q, %v", tc.in, got, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParsePayload(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}
