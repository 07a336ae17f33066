// Package scratch provides a local holding area for in-flight sprite bytes.
//
// Every run gets its own directory named by a random token, so concurrent
// pipelines touching sprites with the same name never collide.
package scratch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Area is the root of the scratch directory tree.
type Area struct {
	root string
	keep bool
}

// NewArea creates the scratch root. With keep set, runs are never removed,
// which is the diagnostic retention mode. Paths handed out by the area are
// absolute so they stay valid for subprocesses running in another directory.
func NewArea(root string, keep bool) (*Area, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving scratch directory: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	return &Area{root: root, keep: keep}, nil
}

// Root returns the scratch root directory.
func (a *Area) Root() string {
	return a.root
}

// Keep reports whether retention mode is active.
func (a *Area) Keep() bool {
	return a.keep
}

// NewRun allocates a uniquely named directory for one unit of work.
// label is a human hint only; uniqueness comes from the token.
func (a *Area) NewRun(label string) (*Run, error) {
	token := uuid.New().String()[:8]
	name := token
	if label = sanitize(label); label != "" {
		name = label + "-" + token
	}

	dir := filepath.Join(a.root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch run: %w", err)
	}
	return &Run{dir: dir, keep: a.keep}, nil
}

// Run is a single scratch directory.
type Run struct {
	dir  string
	keep bool
}

// Dir returns the run directory.
func (r *Run) Dir() string {
	return r.dir
}

// Write stores data under name inside the run and returns the file path.
func (r *Run) Write(name string, data []byte) (string, error) {
	path := filepath.Join(r.dir, sanitize(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing scratch file: %w", err)
	}
	return path, nil
}

// Release removes the run directory unless retention mode is active.
// It is safe to call more than once.
func (r *Run) Release() {
	if r.keep {
		slog.Debug("keeping scratch run", "dir", r.dir)
		return
	}
	if err := os.RemoveAll(r.dir); err != nil {
		slog.Warn("failed to release scratch run", "dir", r.dir, "error", err)
	}
}

// sanitize flattens a name into a single safe path component.
func sanitize(name string) string {
	name = strings.NewReplacer("/", "_", `\`, "_", "..", "_").Replace(name)
	return strings.TrimSpace(name)
}
