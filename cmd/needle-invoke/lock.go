package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LockFile pins the canonical name and identity of every configured
// invoker so configuration drift shows up in review.
type LockFile struct {
	Manifest string  `toml:"manifest,omitempty"`
	Invokers []Entry `toml:"invoker"`
}

var errLockFailures = errors.New("invokers failed to configure")

// NewLockFile pins r. A report with failures cannot be locked.
func NewLockFile(r *Report) (*LockFile, error) {
	if n := r.Failures(); n > 0 {
		return nil, fmt.Errorf("%d %w", n, errLockFailures)
	}
	return &LockFile{Manifest: r.Manifest, Invokers: r.Invokers}, nil
}

func (l *LockFile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("failed to encode lock file: %w", err)
	}
	return buf.Bytes(), nil
}

func (l *LockFile) Write(path string) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // committed file
		return fmt.Errorf("failed to write lock file %s: %w", path, err)
	}
	return nil
}

func ReadLockFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read lock file %s: %w", path, err)
	}
	var l LockFile
	if err := toml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode lock file %s: %w", path, err)
	}
	return &l, nil
}

// Diff lists the invokers pinned by only one of l and other: "+ " marks
// invokers new in other, "- " invokers missing from it.
func (l *LockFile) Diff(other *LockFile) []string {
	pinned := make(map[string]bool, len(l.Invokers))
	for _, e := range l.Invokers {
		pinned[e.Name] = true
	}
	current := make(map[string]bool, len(other.Invokers))
	for _, e := range other.Invokers {
		current[e.Name] = true
	}

	var out []string
	for _, e := range other.Invokers {
		if !pinned[e.Name] {
			out = append(out, "+ "+e.Method+" "+e.Name)
		}
	}
	for _, e := range l.Invokers {
		if !current[e.Name] {
			out = append(out, "- "+e.Method+" "+e.Name)
		}
	}
	return out
}
