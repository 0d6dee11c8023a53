// SPDX-License-Identifier: MPL-2.0

// Package build turns a project into its artifacts.
//
// A build runs the dependency graph pass, optionally installs missing
// packages and repeats the pass, bundles the entry point, and writes
// build/dependency_manifest.json and build/<name>_bundle.pryzma below the
// project root. Unresolved references and cycles are logged as warnings; only
// strict mode turns them into an error.
package build
