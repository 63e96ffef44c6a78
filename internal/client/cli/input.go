package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal seams, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// prompter asks the user for input. Secrets are read without echo when
// stdin is a terminal and as a plain line otherwise, so credentials can
// be piped in from scripts.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// Line prints "label: " and returns the next trimmed input line. A final
// line without a newline is accepted; empty input at EOF is an error.
func (p *prompter) Line(label string) (string, error) {
	if _, err := fmt.Fprintf(p.out, "%s: ", label); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Secret is Line without echo. The caller wipes the result.
func (p *prompter) Secret(label string) ([]byte, error) {
	fd := stdinFd()
	if !isTerminal(fd) {
		s, err := p.Line(label)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}

	if _, err := fmt.Fprintf(p.out, "%s: ", label); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
