//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

// goCmd runs go with its output streamed to the console.
func goCmd(args ...string) error {
	if err := sh.RunV("go", args...); err != nil {
		return fmt.Errorf("go %s: %w", args[0], err)
	}
	return nil
}

func goTidy() error {
	if err := sh.Run("go", "mod", "tidy"); err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	return nil
}
