// SPDX-License-Identifier: MPL-2.0

package js

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/te2run/te2run/internal/engine"
	"github.com/te2run/te2run/internal/logging"
	"github.com/te2run/te2run/pkg/extvar"
)

// Host functions defined in every JavaScript execution.
const (
	FuncReadInput   = "readInput"
	FuncWriteOutput = "writeOutput"
	FuncLog         = "log"
	FuncPrint       = "print"
)

var hostFuncs = []string{FuncReadInput, FuncWriteOutput, FuncLog, FuncPrint}

var (
	// ErrScriptFailed is returned when the script throws.
	ErrScriptFailed = errors.New("script failed")
	// ErrInterrupted is returned when the context ends before the script does.
	ErrInterrupted = errors.New("script interrupted")
)

type execUnit struct {
	engine.UnitBase
	unit *Unit
}

var (
	_ engine.ExecutionUnit = (*execUnit)(nil)
	_ engine.StdioSetter   = (*execUnit)(nil)
)

// Execute runs every part in one VM. Primitive variables are globals; their
// values are read back after the run unless the script left them undefined
// or null.
func (u *execUnit) Execute(ctx context.Context) (err error) {
	vm := goja.New()
	streams := engine.NewOutputStreams(u.Table)
	defer func() {
		u.syncPrimitives(vm)
		err = engine.JoinRunError(err, streams.Close())
	}()

	if err := u.install(ctx, vm, streams); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	for _, part := range u.unit.parts {
		logging.Logf(u.Logger(), logging.LevelDebug, "running %s", part.Path)
		if err := u.runPart(vm, part.Program); err != nil {
			return fmt.Errorf("%s: %w", part.Path, err)
		}
	}
	return nil
}

func (u *execUnit) runPart(vm *goja.Runtime, program *goja.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrScriptFailed, e)
				return
			}
			err = fmt.Errorf("%w: panic: %v", ErrScriptFailed, r)
		}
	}()

	_, err = vm.RunProgram(program)
	if err == nil {
		return nil
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("%w: %v", ErrInterrupted, interrupted.Value())
	}
	return fmt.Errorf("%w: %w", ErrScriptFailed, err)
}

// install defines the primitive globals, the host functions and every
// registered built-in. A function named like a declared primitive is left
// undefined so the primitive keeps its value.
func (u *execUnit) install(ctx context.Context, vm *goja.Runtime, streams *engine.OutputStreams) error {
	for _, kv := range u.Primitives() {
		if err := vm.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to define %s: %w", kv[0], err)
		}
	}

	throw := func(err error) {
		panic(vm.NewGoError(err))
	}

	host := map[string]func(goja.FunctionCall) goja.Value{
		FuncReadInput: func(call goja.FunctionCall) goja.Value {
			var sb strings.Builder
			if err := engine.ReadInput(u.Table, call.Argument(0).String(), &sb); err != nil {
				throw(err)
			}
			return vm.ToValue(sb.String())
		},
		FuncWriteOutput: func(call goja.FunctionCall) goja.Value {
			if err := streams.Write(call.Argument(0).String(), []byte(call.Argument(1).String())); err != nil {
				throw(err)
			}
			return goja.Undefined()
		},
		FuncLog: func(call goja.FunctionCall) goja.Value {
			u.LogScript(call.Argument(0).String(), call.Argument(1).String())
			return goja.Undefined()
		},
		FuncPrint: func(call goja.FunctionCall) goja.Value {
			_, _ = fmt.Fprintln(u.Stdout, strings.Join(stringArgs(call), " "))
			return goja.Undefined()
		},
	}

	for _, name := range u.Registry().Names() {
		host[name] = func(call goja.FunctionCall) goja.Value {
			result, err := u.CallFunction(ctx, name, stringArgs(call))
			if err != nil {
				throw(err)
			}
			return vm.ToValue(result)
		}
	}

	for name, fn := range host {
		if u.VariableKind(name) == extvar.KindPrimitive {
			logging.Logf(u.Logger(), logging.LevelWarn, "primitive %s shadows the function %s", name, name)
			continue
		}
		if err := vm.Set(name, fn); err != nil {
			return fmt.Errorf("failed to define %s: %w", name, err)
		}
	}
	return nil
}

func (u *execUnit) syncPrimitives(vm *goja.Runtime) {
	for _, kv := range u.Primitives() {
		v := vm.Get(kv[0])
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			continue
		}
		// names come from Primitives, so SetVariable cannot fail
		_ = u.SetVariable(kv[0], v.String())
	}
}

func stringArgs(call goja.FunctionCall) []string {
	args := make([]string, len(call.Arguments))
	for i, a := range call.Arguments {
		args[i] = a.String()
	}
	return args
}
