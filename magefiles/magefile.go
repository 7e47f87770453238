//go:build mage

// Package main provides build targets for the tracegen project using Mage.
//
// Usage:
//
//	mage build          Compile tracegen binary to bin/
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage lint           Run go vet and golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install tracegen to GOPATH/bin
//	mage trace          Generate a sample trace and verify it
package main

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "tracegen"
	binaryDir  = "bin"
	cmdDir     = "./cmd/tracegen"
)
