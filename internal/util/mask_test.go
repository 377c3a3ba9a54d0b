package util

import "testing"

func TestMaskTicketID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"TGT-a1b2c3d4e5f6", "TGT-…e5f6"},
		{"ST-xyz12345", "ST-…2345"},
		{"abc", "****"},
		{"noprefix", "no…ix"},
	}
	for _, tc := range cases {
		if got := MaskTicketID(tc.in); got != tc.want {
			t.Fatalf("MaskTicketID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskEmail(t *testing.T) {
	cases := []struct{ in, want string }{
		{"alice@example.com", "a…@e….com"},
		{"  Bob@Mail.ORG ", "b…@m….org"},
		{"", ""},
		{"xy", "***"},
	}
	for _, tc := range cases {
		if got := MaskEmail(tc.in); got != tc.want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
