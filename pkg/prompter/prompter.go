// Package prompter reads answers from the terminal.
package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrInvalidSelection is returned for an out-of-range choice
var ErrInvalidSelection = errors.New("invalid selection")

// Prompter asks questions on Out and reads answers from In
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // terminal descriptor for hidden input, -1 when In is not a tty
}

// New creates a prompter over arbitrary streams. Passwords are read as
// plain lines.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
}

// Stdio creates a prompter on the process terminal
func Stdio() *Prompter {
	p := New(os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		p.fd = fd
	}
	return p
}

func (p *Prompter) line() (string, error) {
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// String prompts for one trimmed line
func (p *Prompter) String(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.line()
	return strings.TrimSpace(s), err
}

// Password prompts without echoing when attached to a terminal
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if p.fd < 0 {
		return p.line()
	}

	pw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (p *Prompter) Confirm(label string) (bool, error) {
	fmt.Fprint(p.out, label+" (y/n) ")
	s, err := p.line()
	if err != nil {
		return false, err
	}
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes", nil
}

// Select lists options and returns the zero-based choice
func (p *Prompter) Select(label string, options []string) (int, error) {
	fmt.Fprintln(p.out, label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "%d) %s\n", i+1, opt)
	}
	fmt.Fprint(p.out, "Select option: ")

	s, err := p.line()
	if err != nil {
		return -1, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > len(options) {
		return -1, ErrInvalidSelection
	}
	return n - 1, nil
}

// Multiline reads lines until an empty one or maxLines
func (p *Prompter) Multiline(label string, maxLines int) (string, error) {
	fmt.Fprintf(p.out, "%s (empty line to finish):\n", label)

	var lines []string
	for len(lines) < maxLines {
		s, err := p.line()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if s == "" {
			break
		}
		lines = append(lines, s)
	}
	return strings.Join(lines, "\n"), nil
}

// PromptString prompts on the terminal for a string
func PromptString(label string) (string, error) {
	return Stdio().String(label)
}

// PromptPassword prompts on the terminal for a hidden password
func PromptPassword(label string) (string, error) {
	return Stdio().Password(label)
}

// PromptConfirm prompts on the terminal for yes/no
func PromptConfirm(label string) (bool, error) {
	return Stdio().Confirm(label)
}
