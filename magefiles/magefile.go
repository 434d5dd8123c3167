//go:build mage

// Package main provides build targets for the doublets project using Mage.
//
// Usage:
//
//	mage build     Compile the doublets binary to bin/
//	mage test      Run all tests
//	mage lint      Run golangci-lint
//	mage clean     Remove build artifacts
//	mage install   Install doublets to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "doublets"
	binaryDir  = "bin"
	cmdDir     = "./cmd/doublets"
	binGo      = "go"
)

// Build compiles the doublets binary into bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", binaryDir, err)
	}
	out := filepath.Join(binaryDir, binaryName)
	return sh.RunV(binGo, "build", "-o", out, cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// Lint runs golangci-lint over the module.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm(binaryDir)
}

// Install installs the doublets binary to GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	return sh.RunV(binGo, "install", cmdDir)
}
