// SPDX-License-Identifier: MPL-2.0

// Package directive extracts import-like directives from Pryzma source text.
//
// Detection is line based rather than a real parse: a line whose significant
// text (everything before the first "//") starts with "use " is a Use
// directive, and a line starting with "#insert" is an Insert directive.
// Anything else is ordinary program text. Malformed directives (an empty
// target after trimming) are dropped without error so that scanning never
// aborts a build.
//
// Comment stripping does not know about string literals, so a "//" inside a
// quoted string truncates the line. This mirrors the behavior of the Pryzma
// toolchain and is preserved deliberately.
package directive
