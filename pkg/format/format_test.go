package format_test

import (
	"testing"

	"github.com/arthur-debert/basefmt/pkg/format"
	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/stretchr/testify/assert"
)

func rules(finalNewline, trimTrailing, trimLeading types.TriState) types.RuleSet {
	return types.RuleSet{FinalNewline: finalNewline, TrimTrailing: trimTrailing, TrimLeading: trimLeading}
}

func TestApply(t *testing.T) {
	on, off := types.Enabled, types.Disabled

	tests := []struct {
		name    string
		input   string
		rules   types.RuleSet
		want    string
		changed bool
	}{
		{"all rules", "\n\nfoo   \nbar\n\n\n", rules(on, on, on), "foo\nbar\n", true},
		{"leading disabled", "\n\nfoo   \nbar\n\n\n", rules(on, on, off), "\n\nfoo\nbar\n", true},
		{"unspecified behaves as enabled", "\n\nfoo   \nbar\n\n\n", types.RuleSet{}, "foo\nbar\n", true},
		{"nothing enabled", "\n\nfoo   \nbar\n\n\n", rules(off, off, off), "\n\nfoo   \nbar\n\n\n", false},
		{"already formatted", "foo\nbar\n", rules(on, on, on), "foo\nbar\n", false},
		{"missing final newline", "foo", rules(on, off, off), "foo\n", true},
		{"final newline disabled keeps single newline", "foo\n", rules(off, on, on), "foo\n", false},
		{"final newline disabled keeps extra newlines", "foo\n\n", rules(off, on, on), "foo\n\n", false},
		{"final newline disabled keeps missing newline", "foo", rules(off, on, on), "foo", false},
		{"empty content stays empty", "", rules(on, on, on), "", false},
		{"only blank lines collapse", "\n\n\n", rules(on, off, off), "", true},
		{"whitespace only lines", "  \n\t\n", rules(on, on, on), "", true},
		{"leading lines with whitespace", " \t\n\nfoo\n", rules(off, off, on), "foo\n", true},
		{"tabs are trailing whitespace", "a\t \nb\t\n", rules(off, on, off), "a\nb\n", true},
		{"trailing on last line", "a\nb  ", rules(off, on, off), "a\nb", true},
		{"interior blank lines kept", "a\n\n\nb\n", rules(on, on, on), "a\n\n\nb\n", false},
		{"leading whitespace on content line kept", "\n  indented\n", rules(on, on, on), "  indented\n", true},
		{"crlf preserved", "a  \r\nb\t\r\n\r\n", rules(on, on, on), "a\r\nb\r\n", true},
		{"crlf style used when appending", "a\r\nb", rules(on, off, off), "a\r\nb\r\n", true},
		{"mixed terminators kept per line", "a \r\nb \nc\n", rules(on, on, on), "a\r\nb\nc\n", true},
		{"carriage return alone is not trailing space", "a\r", rules(off, on, off), "a\r", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := format.Apply([]byte(tt.input), tt.rules)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"\n",
		"foo",
		"\n\nfoo   \nbar\n\n\n",
		"  \n\t\nfoo\t\n  \n\n",
		"a\r\n\r\n b \r\n",
		"a\r",
		"x \n \n \n",
		"\r\n\r\nline\r\n",
		"only spaces   ",
	}
	states := []types.TriState{types.Enabled, types.Disabled, types.Unspecified}

	for _, in := range inputs {
		for _, fn := range states {
			for _, tr := range states {
				for _, tl := range states {
					rs := rules(fn, tr, tl)
					once, _ := format.Apply([]byte(in), rs)
					twice, changed := format.Apply(once, rs)
					assert.False(t, changed, "input %q rules %+v", in, rs)
					assert.Equal(t, string(once), string(twice))
				}
			}
		}
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	in := []byte("\n\nfoo  \n\n")
	orig := string(in)

	_, _ = format.Apply(in, types.AllEnabled())

	assert.Equal(t, orig, string(in))
}

func TestConforms(t *testing.T) {
	assert.True(t, format.Conforms([]byte("ok\n"), types.AllEnabled()))
	assert.False(t, format.Conforms([]byte("ok"), types.AllEnabled()))
	assert.True(t, format.Conforms([]byte("ok"), rules(types.Disabled, types.Enabled, types.Enabled)))
}

func TestEnsureFinalNewline(t *testing.T) {
	assert.Equal(t, "a\n", string(format.EnsureFinalNewline([]byte("a\n\n\n"))))
	assert.Equal(t, "a\r\n", string(format.EnsureFinalNewline([]byte("a\r\n\n\r\n"))))
	assert.Equal(t, "", string(format.EnsureFinalNewline([]byte("\r\n"))))
}

func TestTrimLeadingBlankLines(t *testing.T) {
	assert.Equal(t, "\tx\n\n", string(format.TrimLeadingBlankLines([]byte("\r\n \n\tx\n\n"))))
	assert.Equal(t, "", string(format.TrimLeadingBlankLines([]byte("   "))))
}
