// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/pryzma/pryzma/cmd/pryzma"

func main() {
	cmd.Execute()
}
