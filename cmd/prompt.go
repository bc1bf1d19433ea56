package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"limeal.fr/cobalt/pkg/game/modloader"
)

// Prompter reads answers from the same input the REPL reads commands from.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// Interactive reports whether input comes from a terminal.
func (p *Prompter) Interactive() bool {
	return p.fd >= 0 && term.IsTerminal(p.fd)
}

// Line prints prompt and returns the trimmed answer. io.EOF is returned once
// the input is exhausted and nothing was typed.
func (p *Prompter) Line(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(p.out, prompt)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// YesNo asks until the answer is yes or no, in English or Russian.
func (p *Prompter) YesNo(prompt string) (bool, error) {
	for {
		answer, err := p.Line(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes", "д", "да":
			return true, nil
		case "n", "no", "н", "нет":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer yes or no (да/нет)")
	}
}

// Password reads a secret without echo when input is a terminal.
func (p *Prompter) Password(prompt string) (string, error) {
	if !p.Interactive() {
		return p.Line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	secret, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// Choice shows a numbered menu and returns the index picked, or -1 when the
// answer is empty.
func (p *Prompter) Choice(prompt string, items []string) (int, error) {
	for i, item := range items {
		fmt.Fprintf(p.out, "%3d. %s\n", i+1, item)
	}
	for {
		answer, err := p.Line(prompt)
		if err != nil {
			return -1, err
		}
		if answer == "" {
			return -1, nil
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(items) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Enter a number between 1 and %d, or nothing to cancel\n", len(items))
	}
}

// ChooseBuild lets the user pick a loader build, newest first.
func (p *Prompter) ChooseBuild(_ context.Context, kind modloader.Kind, builds []string) (string, error) {
	fmt.Fprintf(p.out, "Available %s builds:\n", kind)
	idx, err := p.Choice("Build number (Enter to cancel): ", builds)
	if err != nil {
		return "", err
	}
	if idx < 0 {
		return "", modloader.ErrCancelled
	}
	return builds[idx], nil
}
