// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Catalog entries.
const (
	ScriptNotFoundId Id = iota + 1
	CompileFailedId
	ScriptIssuesId
	BindingFailedId
	ExecutionFailedId
	ConfigLoadFailedId
	VarFileInvalidId
	DatabaseUnavailableId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an entry.
	MarkdownMsg string

	// Issue is a catalog entry with remediation guidance.
	Issue struct {
		id    Id
		title string
		mdMsg MarkdownMsg
	}
)

var (
	render = glamour.Render

	issues = map[Id]*Issue{
		ScriptNotFoundId: {
			id:    ScriptNotFoundId,
			title: "script not found",
			mdMsg: `
# Script not found!

te2run could not read the script you asked it to run.

## Things you can try:
- Check the path; relative paths are taken from the current directory
- Paths starting with "/" are resolved against ` + "`working_dir`" + `, or the current directory when it is unset
- Use a ` + "`file:///abs/path`" + ` URI for an absolute host path
- Remote (http/https) scripts are not supported`,
		},
		CompileFailedId: {
			id:    CompileFailedId,
			title: "compilation failed",
			mdMsg: `
# The script does not compile!

The script, or a file it includes, has a syntax error.

## Things you can try:
- Shell scripts (.te2, .sh) use POSIX/bash syntax
- JavaScript scripts (.js) are ECMAScript 5.1 with many ES6 features
- Enable ` + "`strict: false`" + ` if the script relies on sloppy-mode JavaScript`,
		},
		ScriptIssuesId: {
			id:    ScriptIssuesId,
			title: "script has issues",
			mdMsg: `
# The script declares its variables incorrectly!

Compilation succeeded but some directives are invalid, and fail_on_issues
stopped the script before it ran.

## Directive syntax:
~~~
# @extern primitive name
# @extern input data
# @extern output report
# @include lib.te2
~~~

Kinds are primitive, input, inputArray, output and outputArray.
Set ` + "`fail_on_issues: false`" + ` (the default) to run anyway.`,
		},
		BindingFailedId: {
			id:    BindingFailedId,
			title: "binding failed",
			mdMsg: `
# Some variables could not be bound!

## Things you can try:
- Pass values with ` + "`--var name=value`" + ` or a ` + "`--var-file`" + `
- Input and output variables take file paths
- Run ` + "`te2run vars SCRIPT`" + ` to list the declared variables`,
		},
		ExecutionFailedId: {
			id:    ExecutionFailedId,
			title: "execution failed",
			mdMsg: `
# The script failed!

## Things you can try:
- Re-run with ` + "`--log-level debug`" + ` to see what happened
- For shell scripts, ` + "`--trace`" + ` prints every command`,
		},
		ConfigLoadFailedId: {
			id:    ConfigLoadFailedId,
			title: "configuration could not be loaded",
			mdMsg: `
# Configuration error!

## Things you can try:
- Check the CUE syntax of your config file
- Run ` + "`te2run config show`" + ` to see the effective configuration`,
		},
		VarFileInvalidId: {
			id:    VarFileInvalidId,
			title: "variable file invalid",
			mdMsg: `
# A variable file could not be read!

Supported formats are .env, .yaml, .toml, .hcl and .cue, each holding
top-level name/value pairs. Append "?" to a path to make it optional.`,
		},
		DatabaseUnavailableId: {
			id:    DatabaseUnavailableId,
			title: "database unavailable",
			mdMsg: `
# Counters need a database that cannot be reached!

## Things you can try:
- Check ` + "`database.driver`" + ` (sqlite3 or mysql) and ` + "`database.dsn`" + `
- Use ` + "`counter.store: \"memory\"`" + ` to keep counters in memory`,
		},
	}
)

// Id returns the entry id.
func (i *Issue) Id() Id { return i.id }

// Title returns a short summary of the entry.
func (i *Issue) Title() string { return i.title }

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render renders the entry with glamour using stylePath ("dark", "light",
// "notty", "auto" or a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	out, err := render(strings.TrimSpace(string(i.mdMsg)), stylePath)
	if err != nil {
		return "", err
	}
	return out, nil
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Values returns every entry ordered by id.
func Values() []*Issue {
	vals := maps.Values(issues)
	slices.SortFunc(vals, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return vals
}
