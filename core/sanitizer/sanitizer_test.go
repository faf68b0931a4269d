package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nearby/core/sanitizer"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{" +1 (555) 010-9999 ", "+15550109999"},
		{"+49 30.1234.5678", "+493012345678"},
		{"0049 30 1234", "+49301234"},
		{"555-0100", "5550100"},
		{"abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizer.NormalizePhone(tt.in), "input %q", tt.in)
	}
}

func TestStringHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello world", sanitizer.SingleLine("hello\n\r  world "))
	assert.Equal(t, "bold & brave", sanitizer.StripHTML("<b>bold</b> &amp; brave"))
	assert.Equal(t, "abc", sanitizer.RemoveControlChars("a\x00b\x07c"))
	assert.Equal(t, "héll", sanitizer.MaxLength("héllo", 4))
	assert.Equal(t, "", sanitizer.MaxLength("x", 0))
	assert.Equal(t, "hi there", sanitizer.UserText("  <i>hi</i> there\x00 "))
	assert.Equal(t, "user@example.com", sanitizer.TrimToLower("  User@Example.COM "))
}

func TestSanitizeStruct(t *testing.T) {
	t.Parallel()

	type profile struct {
		Bio       string   `sanitize:"user_input,max:10"`
		Interests []string `sanitize:"trim_lower"`
	}
	type input struct {
		Phone   string  `sanitize:"phone"`
		Name    string  `sanitize:"single_line,strip_html"`
		Nick    *string `sanitize:"trim"`
		Skip    string  `sanitize:"-"`
		NoTag   string
		Profile *profile
		Nested  struct {
			Reason string `sanitize:"no_spaces"`
		}
	}

	nick := "  neo  "
	in := input{
		Phone: " +1 (555) 010-9999",
		Name:  "<b>Jane</b>\n Doe",
		Nick:  &nick,
		Skip:  "  keep  ",
		NoTag: "  keep  ",
		Profile: &profile{
			Bio:       "<p>A very long biography</p>",
			Interests: []string{" Hiking ", "MUSIC"},
		},
	}
	in.Nested.Reason = "  too   much   spam "

	require.NoError(t, sanitizer.SanitizeStruct(&in))

	assert.Equal(t, "+15550109999", in.Phone)
	assert.Equal(t, "Jane Doe", in.Name)
	assert.Equal(t, "neo", *in.Nick)
	assert.Equal(t, "  keep  ", in.Skip)
	assert.Equal(t, "  keep  ", in.NoTag)
	assert.Equal(t, "A very lon", in.Profile.Bio)
	assert.Equal(t, []string{"hiking", "music"}, in.Profile.Interests)
	assert.Equal(t, "too much spam", in.Nested.Reason)
}

func TestSanitizeStruct_InvalidTarget(t *testing.T) {
	t.Parallel()

	type s struct{}
	assert.ErrorIs(t, sanitizer.SanitizeStruct(s{}), sanitizer.ErrInvalidTarget)
	assert.ErrorIs(t, sanitizer.SanitizeStruct((*s)(nil)), sanitizer.ErrInvalidTarget)

	str := "x"
	assert.ErrorIs(t, sanitizer.SanitizeStruct(&str), sanitizer.ErrInvalidTarget)
}

func TestRegisterSanitizer(t *testing.T) {
	sanitizer.RegisterSanitizer("shout_test", func(s string) string { return s + "!" })

	type in struct {
		V string `sanitize:"trim,shout_test"`
	}
	v := in{V: " hey "}
	require.NoError(t, sanitizer.SanitizeStruct(&v))
	assert.Equal(t, "hey!", v.V)
}
