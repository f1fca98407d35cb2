package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config carries everything the handler and acceptor need. Nothing is read
// from package state, so tests can point Root at a temporary directory.
type Config struct {
	Port         string
	Root         string
	DefaultFile  string
	NotFound     string
	NotSupported string
	ServerName   string
	Verbose      bool

	// Zero disables the deadline.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// How long shutdown waits for in-flight connections before
	// interrupting them.
	ShutdownTimeout time.Duration

	// Zero means unbounded, one goroutine per accepted connection.
	MaxConns int

	Logger *log.Logger
}

func DefaultConfig() Config {
	return Config{
		Port:         "8080",
		Root:         "./www",
		DefaultFile:  "index.html",
		NotFound:     "404.html",
		NotSupported: "not_supported.html",
		ServerName:   "sndbox fileserver : 1.0",
		Verbose:      true,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,

		ShutdownTimeout: 5 * time.Second,
	}
}

// RegisterFlags binds the config fields to fs, using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "port number")
	fs.StringVar(&c.Root, "root", c.Root, "document root directory")
	fs.StringVar(&c.DefaultFile, "index", c.DefaultFile, "file served for targets ending in /")
	fs.StringVar(&c.NotFound, "not-found", c.NotFound, "page served with 404 responses")
	fs.StringVar(&c.NotSupported, "not-supported", c.NotSupported, "page served with 501 responses")
	fs.StringVar(&c.ServerName, "server-name", c.ServerName, "value of the Server header")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "log connection and request diagnostics")
	fs.DurationVar(&c.ReadTimeout, "read-timeout", c.ReadTimeout, "deadline for reading the request line (0 disables)")
	fs.DurationVar(&c.WriteTimeout, "write-timeout", c.WriteTimeout, "deadline for writing the response (0 disables)")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "grace period for in-flight connections on shutdown")
	fs.IntVar(&c.MaxConns, "max-conns", c.MaxConns, "maximum concurrent connections (0 is unbounded)")
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.Root == "" {
		return fmt.Errorf("document root must not be empty")
	}
	for flagName, name := range map[string]string{
		"index":         c.DefaultFile,
		"not-found":     c.NotFound,
		"not-supported": c.NotSupported,
	} {
		if name == "" || strings.ContainsRune(name, '/') || filepath.IsAbs(name) {
			return fmt.Errorf("-%s must be a plain file name, got %q", flagName, name)
		}
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("max-conns must not be negative")
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	return nil
}

func newLogger() *log.Logger {
	return log.New(os.Stdout, "http: ", log.LstdFlags)
}
