package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// LinePrompter reads a single answer line. End of input is an abort.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

// Prompt implements Prompter.
func (p *LinePrompter) Prompt(ctx context.Context, question string) (Decision, error) {
	out := p.Out
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintf(out, "%s [y/N]: ", strings.TrimSpace(question))

	if ctx.Done() == nil {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		return decideLine(out, line, err)
	}

	type result struct {
		line string
		err  error
	}
	read := make(chan result, 1)
	// On cancellation this reader stays blocked until the input closes.
	// The process is about to exit at that point.
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		read <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(out)
		return Abort, ctx.Err()
	case res := <-read:
		return decideLine(out, res.line, res.err)
	}
}

func decideLine(out io.Writer, line string, err error) (Decision, error) {
	if err != nil && !errors.Is(err, io.EOF) {
		return Abort, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(out)
		return Abort, nil
	}
	return Decide(line), nil
}

// FormPrompter asks with a huh confirm field. Esc or ctrl+c aborts.
type FormPrompter struct{}

// Prompt implements Prompter.
func (FormPrompter) Prompt(ctx context.Context, question string) (Decision, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Description("Stacks and secrets listed above are removed permanently").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).RunWithContext(ctx)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Abort, nil
		}
		return Abort, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	if ok {
		return Proceed, nil
	}
	return Abort, nil
}

// NewPrompter picks the form prompter on a terminal and the line prompter
// otherwise.
func NewPrompter(in io.Reader, out io.Writer) Prompter {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		if o, ok := out.(*os.File); ok && isTerminal(o) {
			return FormPrompter{}
		}
	}
	return &LinePrompter{In: in, Out: out}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
