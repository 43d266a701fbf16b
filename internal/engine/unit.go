// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"io"
	"os"
	"slices"

	"github.com/te2run/te2run/internal/functions"
	"github.com/te2run/te2run/internal/logging"
	"github.com/te2run/te2run/pkg/extvar"
)

// UnitBase carries the state every ExecutionUnit shares regardless of
// dialect: the variable table, compile issues and the run collaborators.
// Engines embed it and add Execute.
type UnitBase struct {
	*Table
	issues   []Issue
	logger   logging.Logger
	services functions.ServiceLocator
	registry *functions.Registry

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewUnitBase creates the shared part of an execution unit.
func NewUnitBase(decls []extvar.Declaration, issues []Issue, registry *functions.Registry) UnitBase {
	return UnitBase{
		Table:    NewTable(decls),
		issues:   slices.Clone(issues),
		logger:   logging.Discard(),
		registry: registry,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Issues returns the compile diagnostics of the unit.
func (u *UnitBase) Issues() []Issue { return slices.Clone(u.issues) }

// SetLogger installs logger; nil restores the discarding logger.
func (u *UnitBase) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.Discard()
	}
	u.logger = logger
}

// Logger returns the installed logger.
func (u *UnitBase) Logger() logging.Logger { return u.logger }

// SetServiceProvider installs the services visible to built-in functions.
func (u *UnitBase) SetServiceProvider(services functions.ServiceLocator) {
	u.services = services
}

// SetStdio replaces the standard streams seen by the script. Nil streams
// are left unchanged.
func (u *UnitBase) SetStdio(stdin io.Reader, stdout, stderr io.Writer) {
	if stdin != nil {
		u.Stdin = stdin
	}
	if stdout != nil {
		u.Stdout = stdout
	}
	if stderr != nil {
		u.Stderr = stderr
	}
}

// Registry returns the function registry the unit was created with.
func (u *UnitBase) Registry() *functions.Registry { return u.registry }

// CallFunction invokes a registered built-in with the unit's collaborators.
func (u *UnitBase) CallFunction(ctx context.Context, name string, args []string) (string, error) {
	return u.registry.Invoke(ctx, functions.Call{
		Name:     name,
		Args:     args,
		Services: u.services,
		Logger:   u.logger,
	})
}

// LogScript writes a message logged by the script itself. An unknown level
// name is logged at INFO.
func (u *UnitBase) LogScript(level, msg string) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		lvl = logging.LevelInfo
	}
	u.logger.Log(lvl, msg)
}
