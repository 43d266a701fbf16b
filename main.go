// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/te2run/te2run/cmd/te2run"

func main() {
	cmd.Execute()
}
