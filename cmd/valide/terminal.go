package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminal is the process's standard streams plus the password prompt.
type terminal struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	// prompt reads a password with echo disabled.
	prompt func(label string) (string, error)
}

func newTerminal() *terminal {
	t := &terminal{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	t.prompt = t.promptTTY
	return t
}

func (t *terminal) promptTTY(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for interactive password prompt (use --password-file)")
	}
	fmt.Fprint(t.errOut, label)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(t.errOut)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

// readPassword reads the password from passwordFile, from stdin when it is
// "-", or prompts when it is empty.
func (t *terminal) readPassword(passwordFile string) (string, error) {
	var data []byte
	var err error
	switch passwordFile {
	case "":
		return t.prompt("Password: ")
	case "-":
		data, err = io.ReadAll(io.LimitReader(t.in, 4096))
		passwordFile = "stdin"
	default:
		data, err = os.ReadFile(passwordFile)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", passwordFile, err)
	}
	pw := strings.TrimRight(string(data), "\r\n")
	if pw == "" {
		return "", fmt.Errorf("file %s is empty (after stripping trailing newlines)", passwordFile)
	}
	return pw, nil
}
