package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/artpar/mingalaroo/internal/core/auth"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	issueToken := flag.String("issue-token", "", "Print a signed organizer token for the given owner id and exit")
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Printf("mingalaroo %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	// Load configuration
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	if *issueToken != "" {
		token, err := auth.IssueToken(*issueToken, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
			return ExitConfigError
		}
		fmt.Println(token)
		return ExitSuccess
	}

	// Setup logger
	logger := SetupLogger(cfg)
	logger.Info("starting mingalaroo",
		"version", Version,
		"config", *configPath,
		"auth_mode", cfg.Auth.Mode,
	)

	ctx := context.Background()

	// Create server
	server, err := NewServer(ctx, cfg, logger)
	if err != nil {
		return exitCode(logger.Error, "failed to create server", err)
	}

	// Start server
	if err := server.Start(ctx); err != nil {
		return exitCode(logger.Error, "server error", err)
	}

	return ExitSuccess
}

// exitCode logs err and returns the exit code it carries.
func exitCode(log func(string, ...any), msg string, err error) int {
	var sErr *ServerError
	if errors.As(err, &sErr) {
		log(msg, "error", sErr.Err, "operation", sErr.Op)
		return sErr.ExitCode
	}
	log(msg, "error", err)
	return ExitConfigError
}
