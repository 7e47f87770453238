//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const sampleIterations = "100000"

// Trace generates a sample trace for each profile into bin/ and replays it
// with tracegen verify.
func Trace() error {
	mg.Deps(Build)
	for _, profile := range []string{"full", "digits"} {
		out := filepath.Join(binaryDir, "sample-"+profile+".trace")
		if err := generateTrace(profile, out); err != nil {
			return err
		}
		if err := sh.RunV(binaryPath(), "verify", "--profile", profile, out); err != nil {
			return fmt.Errorf("verify %s: %w", out, err)
		}
	}
	return nil
}

func generateTrace(profile, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Printf("Generating %s (%s iterations)\n", out, sampleIterations)
	_, err = sh.Exec(nil, f, os.Stderr, binaryPath(), "--profile", profile, "--stats", sampleIterations)
	if err != nil {
		return fmt.Errorf("generate %s: %w", out, err)
	}
	return f.Close()
}
