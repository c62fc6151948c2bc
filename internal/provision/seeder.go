// Package provision runs the external database client that loads fixture data.
package provision

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// CommandSeeder feeds a seed file to a database client process, by default
// `psql <dsn> -v ON_ERROR_STOP=1 -f <file>`.
type CommandSeeder struct {
	Command string
	DSN     string
	File    string
}

// NewCommandSeeder builds a CommandSeeder.
func NewCommandSeeder(command, dsn, file string) *CommandSeeder {
	return &CommandSeeder{Command: command, DSN: dsn, File: file}
}

// Args is the argument list handed to the client.
func (s *CommandSeeder) Args() []string {
	args := []string{}
	if s.DSN != "" {
		args = append(args, s.DSN)
	}
	return append(args, "-v", "ON_ERROR_STOP=1", "-f", s.File)
}

// Seed runs the client and waits for it to exit.
func (s *CommandSeeder) Seed(ctx context.Context) error {
	path, err := exec.LookPath(s.Command)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", s.Command, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, s.Args()...)
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.Command, err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait %s: %w: %s", s.Command, err, strings.TrimSpace(stderr.String()))
	}

	log.Printf("seed applied command=%s file=%s", s.Command, s.File)
	return nil
}
