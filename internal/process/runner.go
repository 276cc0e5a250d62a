// Package process runs external encoders and streams their combined output.
package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgpai22/subburn/internal/logging"
)

// DefaultTailSize is how many trailing output lines a Failure keeps.
const DefaultTailSize = 20

const maxLineBytes = 1024 * 1024

// CommandSpec is an executable plus its arguments and working directory.
// Building one never has side effects; only a Runner executes it.
type CommandSpec struct {
	Path string
	Args []string
	Dir  string
}

// String renders the command for display. It is not meant to be fed to a shell.
func (s CommandSpec) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, quoteArg(s.Path))
	for _, arg := range s.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t\n'\"\\") {
		return strconv.Quote(arg)
	}
	return arg
}

// Failure is returned by Wait when the child exits non-zero or cannot be waited on.
type Failure struct {
	Command  string
	ExitCode int
	// last lines of combined output, oldest first
	Tail []string
	Err  error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s failed with exit code %d", f.Command, f.ExitCode)
	if len(f.Tail) > 0 {
		msg += ": " + f.Tail[len(f.Tail)-1]
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

type Runner struct {
	logger   *logging.Logger
	tailSize int
}

func NewRunner(logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{logger: logger, tailSize: DefaultTailSize}
}

// Process is a started child. Read Lines at most once, then call Wait.
// A Process is not safe for concurrent use.
type Process struct {
	ctx      context.Context
	cmd      *exec.Cmd
	name     string
	stdout   io.ReadCloser
	scanner  *bufio.Scanner
	tail     *tailBuffer
	consumed bool
	logger   *logging.Logger
}

// Start launches spec with stderr merged into stdout. Cancelling ctx kills
// the child.
func (r *Runner) Start(ctx context.Context, spec CommandSpec) (*Process, error) {
	if strings.TrimSpace(spec.Path) == "" {
		return nil, errors.New("process: empty executable path")
	}

	name := filepath.Base(spec.Path)
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...) //nolint:gosec
	cmd.Dir = spec.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	r.logger.Debugw("Starting command",
		"command", name,
		"args", spec.Args,
		"dir", spec.Dir,
	)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	scanner.Split(scanLines)

	return &Process{
		ctx:     ctx,
		cmd:     cmd,
		name:    name,
		stdout:  stdout,
		scanner: scanner,
		tail:    newTailBuffer(r.tailSize),
		logger:  r.logger,
	}, nil
}

// Lines yields output lines as the child produces them. Both "\n" and "\r"
// end a line, so progress updates arrive one by one. The sequence can be
// ranged over once; later calls yield nothing.
func (p *Process) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if p.consumed {
			return
		}
		p.consumed = true

		for p.scanner.Scan() {
			line := p.scanner.Text()
			if line == "" {
				continue
			}
			p.tail.add(line)
			if !yield(line) {
				return
			}
		}
	}
}

// Wait drains any unread output and waits for the child to exit. It returns
// nil on exit code 0 and a *Failure otherwise.
func (p *Process) Wait() error {
	p.consumed = true
	for p.scanner.Scan() {
		if line := p.scanner.Text(); line != "" {
			p.tail.add(line)
		}
	}
	scanErr := p.scanner.Err()
	if scanErr != nil {
		_, _ = io.Copy(io.Discard, p.stdout)
	}

	err := p.cmd.Wait()
	if err == nil && scanErr == nil {
		p.logger.Debugw("Command finished", "command", p.name)
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	} else if err == nil {
		exitCode = 0
	}

	cause := errors.Join(err, scanErr)
	if ctxErr := p.ctx.Err(); ctxErr != nil && !errors.Is(cause, ctxErr) {
		cause = errors.Join(cause, ctxErr)
	}

	p.logger.Debugw("Command failed",
		"command", p.name,
		"exit_code", exitCode,
		"error", cause,
	)

	return &Failure{
		Command:  p.name,
		ExitCode: exitCode,
		Tail:     p.tail.lines(),
		Err:      cause,
	}
}

// Run starts spec, hands every output line to onLine and waits for exit.
func (r *Runner) Run(ctx context.Context, spec CommandSpec, onLine func(string)) error {
	proc, err := r.Start(ctx, spec)
	if err != nil {
		return err
	}
	for line := range proc.Lines() {
		if onLine != nil {
			onLine(line)
		}
	}
	return proc.Wait()
}

// scanLines is bufio.ScanLines that also breaks on a bare carriage return.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

type tailBuffer struct {
	buf  []string
	next int
	full bool
}

func newTailBuffer(size int) *tailBuffer {
	if size <= 0 {
		size = DefaultTailSize
	}
	return &tailBuffer{buf: make([]string, size)}
}

func (t *tailBuffer) add(line string) {
	t.buf[t.next] = line
	t.next = (t.next + 1) % len(t.buf)
	if t.next == 0 {
		t.full = true
	}
}

func (t *tailBuffer) lines() []string {
	if !t.full {
		return append([]string(nil), t.buf[:t.next]...)
	}
	out := make([]string, 0, len(t.buf))
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}
