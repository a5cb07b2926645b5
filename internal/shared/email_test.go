package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"Jo@Example.COM":      "jo@example.com",
		"  padded@host.io  ":  "padded@host.io",
		"already@lower.case":  "already@lower.case",
		"MiXeD.CaSe@HoSt.OrG": "mixed.case@host.org",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeEmail(in))
	}
}
