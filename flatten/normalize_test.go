package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: " \t\n\r ", want: ""},
		{name: "collapses whitespace runs", in: "Hello   world\n\n", want: "Hello world"},
		{name: "newlines become spaces", in: "line one\nline two\r\nline three", want: "line one line two line three"},
		{name: "code fence with language", in: "see ```go\nfmt.Println(1)\n``` done", want: "see fmt.Println(1) done"},
		{name: "bare code fence", in: "```\nx := 1\n```", want: "x := 1"},
		{name: "html tags", in: "<p>Hello <b>there</b></p>", want: "Hello there"},
		{name: "period runs", in: "wait..... what.... ok...", want: "wait... what... ok..."},
		{name: "two periods kept", in: "so.. fine", want: "so.. fine"},
		{name: "zero width and bom", in: "\ufeffze\u200bro\u200c wi\u200ddth", want: "zero width"},
		{name: "unicode spaces", in: "a\u00a0\u00a0b\u3000c", want: "a b c"},
		{name: "tag removal leaves no double space", in: "a <br> b", want: "a b"},
		{name: "tag removal joins periods", in: "..<i>..", want: "..."},
		{name: "tag removal exposes fence", in: "``<i>` code", want: "code"},
		{name: "zero width between periods", in: "..\u200b..", want: "..."},
		{name: "trailing zero width space", in: "hi \u200b", want: "hi"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Hello   world\n\n",
		"a <br> b",
		"..<i>..",
		"``<i>`` code",
		"..\u200b..",
		"```py\nprint('x')```\n\n<div>\u200b  ....  </div>",
		"<<a>b>",
		"x\u200b \u200by",
		"\t\v\f\x1c mixed \x1f\u0085 controls",
		"````",
		"`\u200b``python done",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
