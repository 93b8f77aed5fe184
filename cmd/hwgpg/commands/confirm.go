package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminalConfirmer asks yes/no questions on the controlling terminal.
type terminalConfirmer struct {
	in  *os.File
	out io.Writer
}

func newTerminalConfirmer(in *os.File, out io.Writer) *terminalConfirmer {
	return &terminalConfirmer{in: in, out: out}
}

// Confirm prints prompt and reads an answer. Only "y" and "yes" confirm.
// Without a terminal on stdin nobody can answer, which is an error.
func (t *terminalConfirmer) Confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(t.in.Fd())) {
		return false, errors.New("stdin is not a terminal, pass --yes to confirm")
	}
	return readAnswer(t.in, t.out, prompt)
}

func readAnswer(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
