package oracle

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"opacsplice/internal/logging"
)

const component = "oracle"

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, dir, binary string, args []string, onStdout func(string)) error
}

// Option configures a Process.
type Option func(*Process)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(p *Process) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Process) {
		p.logger = logging.NewComponentLogger(logger, component)
	}
}

// Process runs the interpolation program once per query.
type Process struct {
	binary  string
	dir     string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// NewProcess constructs a process-backed oracle. The binary is resolved
// relative to dir when it contains a path separator.
func NewProcess(binary, dir string, timeout time.Duration, opts ...Option) (*Process, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("oracle binary required")
	}
	p := &Process{
		binary:  binary,
		dir:     dir,
		timeout: timeout,
		exec:    CommandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Query runs the program for q. A call that outlives the per-call timeout is
// a range miss wrapping context.DeadlineExceeded; cancellation of ctx itself
// is returned unchanged.
func (p *Process) Query(ctx context.Context, q Query) (float64, error) {
	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var out strings.Builder
	err := p.exec.Run(callCtx, p.dir, p.binary, q.Args(), func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: %s after %s: %w", ErrRangeMiss, q.Key(), p.timeout, context.DeadlineExceeded)
		}
		return 0, fmt.Errorf("%w: %s: %w", ErrProcess, q.Key(), err)
	}

	v, err := ParseResponse(out.String())
	if err != nil {
		p.logger.Debug("oracle returned no value",
			logging.String("args", q.Key()),
			logging.String("response", strings.TrimSpace(out.String())),
		)
		return 0, err
	}
	return v, nil
}

// Build runs the oracle build command (for example "make") in dir. An empty
// command is a no-op.
func Build(ctx context.Context, exec Executor, dir, command string, logger *slog.Logger) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	if exec == nil {
		exec = CommandExecutor{}
	}
	logger = logging.NewComponentLogger(logger, component)

	started := time.Now()
	err := exec.Run(ctx, dir, fields[0], fields[1:], func(line string) {
		logger.Debug("build output", logging.String("line", line))
	})
	if err != nil {
		return fmt.Errorf("%w: build %q in %s: %w", ErrProcess, command, dir, err)
	}
	logger.Info("oracle built",
		logging.String("command", command),
		logging.Duration("duration", time.Since(started)),
	)
	return nil
}

// Identity names the program at binary by its resolved path, size, and
// modification time, so a rebuilt or replaced program gets a new identity.
// Bare names are looked up on PATH.
func Identity(binary string) string {
	path := binary
	if !strings.ContainsRune(path, filepath.Separator) {
		if found, err := exec.LookPath(path); err == nil {
			path = found
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		return path
	}
	return fmt.Sprintf("%s@%d:%d", path, info.Size(), info.ModTime().UnixNano())
}

// CommandExecutor runs real processes. Stdout is delivered line by line
// once the process exits; stderr is attached to any failure.
type CommandExecutor struct{}

const outputLimit = 64 * 1024

func (CommandExecutor) Run(ctx context.Context, dir, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	// Grandchildren may hold the pipes open after a timeout kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, remaining: outputLimit}
	cmd.Stderr = &limitedWriter{w: &stderr, remaining: outputLimit}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("run command: %w: %s", err, msg)
		}
		return fmt.Errorf("run command: %w", err)
	}

	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		if onStdout != nil {
			onStdout(scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan output: %w", err)
	}
	return nil
}

type limitedWriter struct {
	w         io.Writer
	remaining int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if l.remaining <= 0 {
		return n, nil
	}
	if len(p) > l.remaining {
		p = p[:l.remaining]
	}
	written, err := l.w.Write(p)
	l.remaining -= written
	if err != nil {
		return written, err
	}
	return n, nil
}
