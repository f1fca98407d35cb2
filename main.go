package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
)

func main() {
	cfg := DefaultConfig()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg.Logger = newLogger()
	if err := cfg.Validate(); err != nil {
		cfg.Logger.Fatalf("E invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		cfg.Logger.Fatal(err)
	}
}

func run(ctx context.Context, cfg Config) error {
	root, err := OpenDocRoot(cfg.Root, cfg.DefaultFile)
	if err != nil {
		return err
	}
	defer root.Close()

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return err
	}
	defer ln.Close()

	cfg.Logger.Printf("Server started. Serving %s", root.Dir())
	cfg.Logger.Printf("Listening for connections on port: %s...", cfg.Port)

	server := NewServer(cfg, NewHandler(cfg, root))
	err = server.Serve(ctx, ln)
	cfg.Logger.Println("Server stopped")
	return err
}
