// Package resource locates files bundled with the shell.
//
// Bundled files live under a resource root, by default a "resources"
// directory next to the shell executable. Paths handed to the resolver are
// always relative to that root.
package resource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirName is the resource directory created next to the executable by the
// packaging step.
const DirName = "resources"

var (
	// ErrNoResourceRoot is returned when no resource root could be determined.
	ErrNoResourceRoot = errors.New("resource root unknown")

	// ErrInvalidResourcePath is returned for absolute paths and paths that
	// climb out of the resource root.
	ErrInvalidResourcePath = errors.New("invalid resource path")
)

// Resolver maps resource-relative paths to filesystem paths.
type Resolver struct {
	Root string
}

// NewResolver returns a resolver rooted at root, or at the default location
// next to the running executable when root is empty. If the executable path
// cannot be determined the resolver has no root and every Resolve fails.
func NewResolver(root string) *Resolver {
	if root != "" {
		return &Resolver{Root: filepath.Clean(root)}
	}
	return &Resolver{Root: defaultRoot(os.Executable)}
}

func defaultRoot(executable func() (string, error)) string {
	exe, err := executable()
	if err != nil || exe == "" {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DirName)
}

// Resolve returns the filesystem path of rel under the resource root.
// The file is not required to exist.
func (r *Resolver) Resolve(rel string) (string, error) {
	if r == nil || r.Root == "" {
		return "", ErrNoResourceRoot
	}
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidResourcePath, rel)
	}

	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes the resource root", ErrInvalidResourcePath, rel)
	}

	return filepath.Join(r.Root, clean), nil
}

// ResolveOrFallback resolves rel, returning fallback when resolution fails.
// The returned error is the resolution failure, or nil when rel resolved.
func (r *Resolver) ResolveOrFallback(rel, fallback string) (string, error) {
	path, err := r.Resolve(rel)
	if err != nil {
		return filepath.FromSlash(fallback), err
	}
	return path, nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path names an existing directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
