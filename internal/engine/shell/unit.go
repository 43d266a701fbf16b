// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"

	"github.com/te2run/te2run/internal/engine"
	"github.com/te2run/te2run/internal/logging"
)

// Builtin command names available to shell dialect scripts.
const (
	CmdSet   = "te2_set"
	CmdGet   = "te2_get"
	CmdRead  = "te2_read"
	CmdWrite = "te2_write"
	CmdLog   = "te2_log"
)

// ErrScriptFailed is returned when the script exits with a non-zero status.
var ErrScriptFailed = errors.New("script failed")

type execUnit struct {
	engine.UnitBase
	unit *Unit
}

var (
	_ engine.ExecutionUnit = (*execUnit)(nil)
	_ engine.StdioSetter   = (*execUnit)(nil)
)

// Execute runs every part of the program in one interpreter, so functions
// and variables defined by includes are visible to the script. Output
// streams opened during the run are closed before Execute returns.
func (u *execUnit) Execute(ctx context.Context) error {
	streams := engine.NewOutputStreams(u.Table)

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(u.environ()...)),
		interp.StdIO(u.Stdin, u.Stdout, u.Stderr),
		interp.ExecHandlers(u.execHandler(streams)),
	}
	if u.unit.trace {
		opts = append(opts, interp.Params("-x"))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to create interpreter: %w", err), streams.Close())
	}

	runErr := u.run(ctx, runner)
	return engine.JoinRunError(runErr, streams.Close())
}

func (u *execUnit) run(ctx context.Context, runner *interp.Runner) error {
	for _, part := range u.unit.parts {
		logging.Logf(u.Logger(), logging.LevelDebug, "running %s", part.Path)
		if err := runner.Run(ctx, part.Program); err != nil {
			var status interp.ExitStatus
			if errors.As(err, &status) {
				return fmt.Errorf("%w: %s exited with status %d", ErrScriptFailed, part.Path, uint8(status))
			}
			return fmt.Errorf("script execution failed: %w", err)
		}
		if runner.Exited() {
			return nil
		}
	}
	return nil
}

// environ returns the host environment with every primitive exported.
func (u *execUnit) environ() []string {
	env := os.Environ()
	for _, kv := range u.Primitives() {
		env = append(env, kv[0]+"="+kv[1])
	}
	return env
}

func (u *execUnit) execHandler(streams *engine.OutputStreams) func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return next(ctx, args)
			}
			hc := interp.HandlerCtx(ctx)

			switch args[0] {
			case CmdSet:
				if len(args) < 2 {
					return fail(hc.Stderr, "usage: %s NAME [VALUE...]", CmdSet)
				}
				if err := u.SetVariable(args[1], strings.Join(args[2:], " ")); err != nil {
					return fail(hc.Stderr, "%s: %v", CmdSet, err)
				}
				return nil
			case CmdGet:
				if len(args) != 2 {
					return fail(hc.Stderr, "usage: %s NAME", CmdGet)
				}
				v, ok := u.Variable(args[1])
				if !ok {
					return fail(hc.Stderr, "%s: %s is not a declared primitive", CmdGet, args[1])
				}
				_, _ = fmt.Fprintln(hc.Stdout, v)
				return nil
			case CmdRead:
				if len(args) != 2 {
					return fail(hc.Stderr, "usage: %s NAME", CmdRead)
				}
				if err := engine.ReadInput(u.Table, args[1], hc.Stdout); err != nil {
					return fail(hc.Stderr, "%s: %v", CmdRead, err)
				}
				return nil
			case CmdWrite:
				return u.write(hc, streams, args)
			case CmdLog:
				if len(args) < 3 {
					return fail(hc.Stderr, "usage: %s LEVEL MESSAGE...", CmdLog)
				}
				u.LogScript(args[1], strings.Join(args[2:], " "))
				return nil
			}

			if _, ok := u.Registry().Lookup(args[0]); ok {
				result, err := u.CallFunction(ctx, args[0], args[1:])
				if err != nil {
					return fail(hc.Stderr, "%v", err)
				}
				_, _ = fmt.Fprintln(hc.Stdout, result)
				return nil
			}
			return next(ctx, args)
		}
	}
}

// write appends its arguments, or its standard input when there are none,
// to an output variable.
func (u *execUnit) write(hc interp.HandlerContext, streams *engine.OutputStreams, args []string) error {
	if len(args) < 2 {
		return fail(hc.Stderr, "usage: %s NAME [TEXT...]", CmdWrite)
	}
	name := args[1]
	if len(args) > 2 {
		if err := streams.Write(name, []byte(strings.Join(args[2:], " ")+"\n")); err != nil {
			return fail(hc.Stderr, "%s: %v", CmdWrite, err)
		}
		return nil
	}
	w, err := streams.Writer(name)
	if err != nil {
		return fail(hc.Stderr, "%s: %v", CmdWrite, err)
	}
	if hc.Stdin == nil {
		return nil
	}
	if _, err := io.Copy(w, hc.Stdin); err != nil {
		return fail(hc.Stderr, "%s: %s: %v", CmdWrite, name, err)
	}
	return nil
}

// fail reports a builtin failure on stderr and sets exit status 1, which
// the script can test like any other command status.
func fail(stderr io.Writer, format string, args ...any) error {
	if stderr != nil {
		_, _ = fmt.Fprintf(stderr, "te2run: "+format+"\n", args...)
	}
	return interp.ExitStatus(1)
}
