package main

import (
	"io"

	"github.com/chazu/meshalign/pkg/catalog"
)

func runCatalog(stdout io.Writer) error {
	_, err := stdout.Write(catalog.DefaultTOML())
	return err
}
