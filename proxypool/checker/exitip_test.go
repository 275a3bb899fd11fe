package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExitIP(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"plain text", "1.2.3.4", "1.2.3.4"},
		{"whitespace", "  1.2.3.4\n", "1.2.3.4"},
		{"with port", "1.2.3.4:54321", "1.2.3.4"},
		{"json ip", `{"ip":"5.6.7.8"}`, "5.6.7.8"},
		{"json origin", `{"origin":"5.6.7.8"}`, "5.6.7.8"},
		{"json origin with port", `{"origin":"5.6.7.8:1234"}`, "5.6.7.8"},
		{"unrecognized text kept as-is", "behind-nat.example", "behind-nat.example"},
		{"empty", "", ""},
		{"blank", "   \n", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseExitIP(tc.body))
		})
	}
}
