//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Opens the scene in a desktop window.
func (Run) Window() error {
	return runPrism("-backend", "ebiten")
}

// Draws the scene in the current terminal. Logs go to prism.log.
func (Run) Terminal() error {
	return runPrism("-backend", "terminal")
}

// Renders a 120 frame orbit of the scene into frames/.
func (Run) Export() error {
	return runPrism("-frames", "120", "-out", "frames")
}

func runPrism(args ...string) error {
	fmt.Println("Run prism...")
	return goCmd(append([]string{"run", "."}, args...)...)
}
