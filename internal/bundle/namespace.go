// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"regexp"
	"strings"
)

// functionDefPattern matches a function definition header at line start.
var functionDefPattern = regexp.MustCompile(`(?m)^/([^\s{]+)`)

// Namespace rewrites every function definition header "/name" in body to
// "/alias.name". Names already prefixed with "alias." are left untouched.
// An empty alias returns body unchanged.
func Namespace(body, alias string) string {
	if alias == "" {
		return body
	}
	prefix := alias + "."
	return functionDefPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := match[1:]
		if strings.HasPrefix(name, prefix) {
			return match
		}
		return "/" + prefix + name
	})
}
