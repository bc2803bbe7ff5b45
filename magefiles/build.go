//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the prism binary into bin/.
func (Build) Engine() error {
	if err := goTidy(); err != nil {
		return err
	}
	return goCmd("build", "-o", "bin/prism", ".")
}

// Vets every package.
func (Build) Vet() error {
	return goCmd("vet", "./...")
}
