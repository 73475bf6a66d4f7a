package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter reads answers line by line from the terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints label and returns the trimmed reply. io.EOF is returned when
// the input ends before a line is read.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askDefault returns value when it is set, otherwise prompts for it.
func (p *prompter) askDefault(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	return p.ask(label)
}
