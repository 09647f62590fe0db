// Package dotenv seeds the process environment from a local .env file so
// the companion can run outside a managed service environment.
package dotenv

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads KEY=VALUE lines from path and sets any variable that is
// not already present in the environment. A missing file is not an error;
// the AURA_* variables may come entirely from the shell.
func LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open env file %q: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, val, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return fmt.Errorf("set env %q from %q: %w", key, path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan env file %q: %w", path, err)
	}
	return nil
}

// parseLine extracts one assignment. Comments, blanks, and lines without a
// key are skipped; an optional "export " prefix and matching single or
// double quotes around the value are stripped.
func parseLine(raw string) (key, val string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	key, val, found := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", false
	}

	val = strings.TrimSpace(val)
	for _, quote := range []string{`"`, "'"} {
		if len(val) >= 2 && strings.HasPrefix(val, quote) && strings.HasSuffix(val, quote) {
			val = val[1 : len(val)-1]
			break
		}
	}
	return key, val, true
}
