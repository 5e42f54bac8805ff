// Package envscope saves and restores process-wide state around a unit of work.
//
// Two pieces of state are covered: one named environment variable and the
// current working directory. They are captured together and restored
// together, whatever way the wrapped work exits.
//
// Process state is shared by every goroutine, so a Scope must not be used
// while other goroutines read or change the same variable or directory.
package envscope

import (
	"errors"
	"fmt"
	"os"
)

// Scope holds the state captured by Capture.
type Scope struct {
	name  string
	value string
	set   bool
	dir   string
}

// Capture records the current value of the variable name (or that it is
// unset) and the current working directory.
func Capture(name string) (*Scope, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("capturing working directory: %w", err)
	}
	value, set := os.LookupEnv(name)
	return &Scope{name: name, value: value, set: set, dir: dir}, nil
}

// Restore puts back the captured variable and working directory.
// Both restorations are attempted even when the first one fails.
func (s *Scope) Restore() error {
	var envErr error
	if s.set {
		envErr = os.Setenv(s.name, s.value)
	} else {
		envErr = os.Unsetenv(s.name)
	}
	if envErr != nil {
		envErr = fmt.Errorf("restoring %s: %w", s.name, envErr)
	}

	dirErr := os.Chdir(s.dir)
	if dirErr != nil {
		dirErr = fmt.Errorf("restoring working directory %s: %w", s.dir, dirErr)
	}

	return errors.Join(envErr, dirErr)
}

// Run captures the variable name and the working directory, calls fn, then
// restores both. Restoration also happens when fn panics; the panic is
// re-raised afterwards. A restoration failure is joined with fn's error.
func Run(name string, fn func() error) (err error) {
	scope, err := Capture(name)
	if err != nil {
		return err
	}

	defer func() {
		if restoreErr := scope.Restore(); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}
	}()

	return fn()
}
