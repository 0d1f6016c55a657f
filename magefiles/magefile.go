//go:build mage

// Package main contains Mage build targets for pdf-toolkit developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "pdf-toolkit"
	cmdPkg  = "./cmd/pdf-toolkit"
)

// Build compiles the CLI binary into bin/, stamping main.version from git
// when a checkout is available.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)

	args := []string{"build", "-o", out}
	if v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil && v != "" {
		args = append(args, "-ldflags", "-X main.version="+v)
	}
	args = append(args, cmdPkg)

	if err := sh.RunV("go", args...); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// engines lists the external binaries conversions shell out to.
var engines = []string{
	"soffice", "pdftoppm", "pdftotext", "pdfinfo", "pdfunite", "pdfseparate",
	"qpdf", "gs", "tesseract", "magick",
}

// Engines reports which external conversion engines are reachable on PATH.
func Engines() error {
	missing := 0
	for _, name := range engines {
		path, err := exec.LookPath(name)
		if err != nil {
			fmt.Printf("  %-12s MISSING\n", name)
			missing++
			continue
		}
		fmt.Printf("  %-12s %s\n", name, path)
	}
	if missing > 0 {
		return fmt.Errorf("%d engine(s) missing", missing)
	}
	fmt.Println("All engines available.")
	return nil
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	var prodLines, testLines, docWords int
	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return skipHidden(path, info)
		}
		switch filepath.Ext(path) {
		case ".go":
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			n := 0
			for _, line := range bytes.Split(data, []byte("\n")) {
				if len(bytes.TrimSpace(line)) > 0 {
					n++
				}
			}
			if strings.HasSuffix(path, "_test.go") {
				testLines += n
			} else {
				prodLines += n
			}
		case ".md", ".yaml", ".yml":
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			docWords += len(bytes.Fields(data))
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipHidden prunes hidden and underscore-prefixed directories, the same set
// the Go toolchain ignores.
func skipHidden(path string, info os.FileInfo) error {
	name := info.Name()
	if path != "." && (name[0] == '.' || name[0] == '_') {
		return filepath.SkipDir
	}
	return nil
}
