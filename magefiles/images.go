package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"
)

// markitdownDockerfile packages the markitdown CLI so that it reads a PDF
// on stdin and writes Markdown to stdout.
const markitdownDockerfile = `FROM python:3.12-slim
RUN pip install --no-cache-dir 'markitdown[pdf]'
ENTRYPOINT ["markitdown"]
`

// Markitdown builds the markitdown:latest image used for PDF extraction.
func Markitdown() error {
	runtime, err := containerRuntime()
	if err != nil {
		return err
	}
	cmd := exec.Command(runtime, "build", "-t", "markitdown:latest", "-")
	cmd.Stdin = strings.NewReader(markitdownDockerfile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s build: %w", runtime, err)
	}
	fmt.Println("Built markitdown:latest")
	return nil
}

// containerRuntime returns the first of docker or podman that responds.
func containerRuntime() (string, error) {
	for _, name := range []string{"docker", "podman"} {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		if err := sh.Run(name, "info"); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no container runtime found: install docker or podman")
}
