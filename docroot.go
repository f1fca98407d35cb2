package main

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrOutsideRoot = errors.New("target escapes document root")
)

//go:embed pages/*.html
var builtinPages embed.FS

// DocRoot resolves request targets inside one directory. Opens go through
// os.Root, so neither ".." nor a symlink can reach outside it.
type DocRoot struct {
	root        *os.Root
	defaultFile string
}

func OpenDocRoot(dir, defaultFile string) (*DocRoot, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open document root: %w", err)
	}
	return &DocRoot{root, defaultFile}, nil
}

func (d *DocRoot) Close() error {
	return d.root.Close()
}

func (d *DocRoot) Dir() string {
	return d.root.Name()
}

// Resolve turns a request target into a root-relative file name.
func (d *DocRoot) Resolve(target string) (string, error) {
	if strings.HasSuffix(target, "/") {
		target += d.defaultFile
	}
	for _, seg := range strings.Split(target, "/") {
		if seg == ".." {
			return "", ErrOutsideRoot
		}
	}
	name := strings.TrimLeft(target, "/")
	if name == "" {
		name = d.defaultFile
	}
	return name, nil
}

func (d *DocRoot) open(name string) (*os.File, os.FileInfo, error) {
	f, err := d.root.Open(name)
	if err != nil {
		// Any failure to open, not only absence, is answered with a 404.
		return nil, nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}
	return f, fi, nil
}

// Stat returns the size of name without reading it.
func (d *DocRoot) Stat(name string) (int64, error) {
	f, fi, err := d.open(name)
	if err != nil {
		return 0, err
	}
	f.Close()
	return fi.Size(), nil
}

// ReadFile returns the full contents of name.
func (d *DocRoot) ReadFile(name string) ([]byte, error) {
	f, _, err := d.open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Resource reads one of the fixed error pages. A page missing from the
// document root is replaced by the built-in page named builtin.
func (d *DocRoot) Resource(name, builtin string) ([]byte, error) {
	data, err := d.ReadFile(name)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	page, berr := builtinPages.ReadFile("pages/" + builtin)
	if berr != nil {
		return nil, err
	}
	return page, nil
}
