//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import "github.com/magefile/mage/sh"

const binLint = "golangci-lint"

// lintTargets are the mechcheck package trees; build tooling is left out.
var lintTargets = []string{"./cmd/...", "./internal/...", "./pkg/..."}

// Lint runs go vet and golangci-lint over the mechcheck packages.
func Lint() error {
	vet := append([]string{"vet"}, lintTargets...)
	if err := sh.RunV(binGo, vet...); err != nil {
		return err
	}
	args := append([]string{"run"}, lintTargets...)
	return sh.RunV(binLint, args...)
}
