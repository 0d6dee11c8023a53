// SPDX-License-Identifier: MPL-2.0

// Package ppm installs Pryzma packages into the local package repository.
//
// Packages are fetched as zip archives from HTTP mirrors, with a shallow git
// clone of the packages repository as the last resort. Each package occupies
// one directory named after it, which is what dependency resolution expects.
package ppm
