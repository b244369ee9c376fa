// Package spool tracks the temporary files a single multipart parse spills
// file uploads into, and guarantees they are closed and removed exactly
// once no matter how the parse ends.
package spool

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
)

// Registry owns every temp file created during one parse. A file is
// registered before its handle is handed out, so Cleanup can never miss
// one that has already received bytes.
type Registry struct {
	st *state
}

type state struct {
	mu      sync.Mutex
	dir     string
	pattern string
	files   []*os.File
	done    bool
}

// NewRegistry returns a Registry creating files in dir (the OS temp
// directory when dir is empty) with the given os.CreateTemp pattern.
//
// A runtime cleanup is attached as a backstop for a Registry that becomes
// unreachable without Cleanup having run. Its timing is up to the garbage
// collector; explicit Cleanup remains the contract.
func NewRegistry(dir, pattern string) *Registry {
	st := &state{dir: dir, pattern: pattern}
	r := &Registry{st: st}
	runtime.SetFinalizer(r, func(r *Registry) { _ = r.st.cleanup() })
	return r
}

// Create opens a fresh temp file and registers it.
func (r *Registry) Create() (*os.File, error) {
	f, err := os.CreateTemp(r.st.dir, r.st.pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	r.st.mu.Lock()
	r.st.files = append(r.st.files, f)
	r.st.mu.Unlock()

	return f, nil
}

// Len returns the number of registered temp files.
func (r *Registry) Len() int {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return len(r.st.files)
}

// Cleanup closes every registered handle and removes the backing files
// from disk. The first call does the work; later calls are no-ops.
func (r *Registry) Cleanup() error {
	return r.st.cleanup()
}

func (st *state) cleanup() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.done {
		return nil
	}
	st.done = true

	var errs []error
	for _, f := range st.files {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	st.files = nil

	return errors.Join(errs...)
}
