package api

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads answers line by line from in, writing questions to out.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter returns a Prompter over in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Ask prints question and returns the next trimmed input line. ok is false
// once the input is exhausted.
func (p *Prompter) Ask(question string) (answer string, ok bool) {
	if question != "" {
		fmt.Fprint(p.out, question)
	}
	if !p.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.scanner.Text()), true
}

// Credentials asks for a username and a password.
func (p *Prompter) Credentials() (username, password string, ok bool) {
	if username, ok = p.Ask("Username: "); !ok {
		return "", "", false
	}
	if password, ok = p.Ask("Password: "); !ok {
		return "", "", false
	}
	return username, password, true
}

// NewTask asks for the title and description of a task.
func (p *Prompter) NewTask() (title, description string, ok bool) {
	if title, ok = p.Ask("Enter title: "); !ok {
		return "", "", false
	}
	if description, ok = p.Ask("Enter description: "); !ok {
		return "", "", false
	}
	return title, description, true
}
