//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for mechcheck using Mage.
//
// Usage:
//
//	mage build          Compile mechcheck to bin/
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:short     Run tests, skipping the full-resolution fixtures
//	mage lint           Run golangci-lint
//	mage reference      Run the whole pipeline on the reference crossing
//	mage clean          Remove build artifacts
//	mage install        Install mechcheck to GOPATH/bin
//	mage stats          Print Go LOC and documentation word counts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "mechcheck"
	binaryDir  = "bin"
	cmdDir     = "./cmd/mechcheck"
)

// Build compiles the mechcheck binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Reference builds the binary and runs build, prune, and search on the
// reference crossing, then verifies the plans.
func Reference() error {
	mg.Deps(Build)
	bin := filepath.Join(binaryDir, binaryName)
	if err := sh.RunV(bin, "run"); err != nil {
		return err
	}
	return sh.RunV(bin, "verify")
}
