// SPDX-License-Identifier: MPL-2.0

// Package bundle concatenates an entry file and everything it uses into a
// single source text.
//
// #insert directives are replaced in place by the processed text of their
// target. use directives are removed from the text; each distinct module
// (real path, alias, namespacing flag) is emitted once, before the entry
// body, with its top-level function definitions prefixed by the module alias
// so that two modules defining the same name do not collide.
package bundle
