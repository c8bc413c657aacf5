package prompter

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("  sam@example.com \n"), &out)

	s, err := p.String("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", s)
	assert.Equal(t, "Email: ", out.String())
}

func TestStringWithoutTrailingNewline(t *testing.T) {
	p := New(strings.NewReader("last"), io.Discard)
	s, err := p.String("> ")
	require.NoError(t, err)
	assert.Equal(t, "last", s)

	_, err = p.String("> ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPasswordFromPipe(t *testing.T) {
	p := New(strings.NewReader(" secret \n"), io.Discard)
	pw, err := p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, " secret ", pw, "passwords are not trimmed")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		p := New(strings.NewReader(tt.input), io.Discard)
		got, err := p.Confirm("Delete?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestSelect(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("2\n"), &out)

	i, err := p.Select("Feed mode", []string{"latest", "following", "popular"})
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Contains(t, out.String(), "3) popular")

	for _, in := range []string{"0\n", "4\n", "x\n"} {
		_, err := New(strings.NewReader(in), io.Discard).Select("m", []string{"a", "b", "c"})
		assert.ErrorIs(t, err, ErrInvalidSelection, in)
	}
}

func TestMultiline(t *testing.T) {
	p := New(strings.NewReader("line one\nline two\n\nignored\n"), io.Discard)
	s, err := p.Multiline("Comment", 10)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", s)

	p = New(strings.NewReader("a\nb\nc\n"), io.Discard)
	s, err = p.Multiline("Comment", 2)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", s)

	p = New(strings.NewReader("tail"), io.Discard)
	s, err = p.Multiline("Comment", 5)
	require.NoError(t, err)
	assert.Equal(t, "tail", s)
}
