package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Quarterly planning call with Acme",
			want:  "Quarterly planning call with Acme",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "script tag stripped, inner text kept",
			input: "<script>alert(1)</script>Launch",
			want:  "Launch",
		},
		{
			name:  "inline markup stripped",
			input: `<b onclick="steal()">Board meeting</b> at <i>noon</i>`,
			want:  "Board meeting at noon",
		},
		{
			name:  "pre-escaped tag cannot survive",
			input: "&lt;img src=x onerror=alert(1)&gt;Review",
			want:  "Review",
		},
		{
			name:  "entities decoded",
			input: "Sales &amp; Marketing sync",
			want:  "Sales & Marketing sync",
		},
		{
			name:  "bare comparison survives",
			input: "budget < 500 and > 100",
			want:  "budget < 500 and > 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		"<div><p>nested <b>bold</b></p></div>",
		"&lt;script&gt;x&lt;/script&gt;Launch",
		"&amp;amp;amp;",
		"Sales &amp; Marketing",
		"**markdown** stays *alone*",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "Clean must be idempotent for %q", in)
	}
}

func TestCleanAndTrim(t *testing.T) {
	assert.Equal(t, "Launch", CleanAndTrim("  <p>Launch</p>\n"))
}
