// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Tree, MemTree and OsTree lay out source trees on an afero or OS filesystem.
// The Must* helpers cover environment variables, the working directory and
// resource cleanup.
package testutil
