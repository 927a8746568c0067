package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/pixel-tools-mcp/internal/config"
	"github.com/ironsheep/pixel-tools-mcp/internal/logger"
	"github.com/ironsheep/pixel-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("%s %s\n", server.Name, Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Printf("%s - MCP server for pixel-level image analysis\n", server.Name)
			fmt.Println()
			fmt.Printf("Usage: %s [options]\n", server.Name)
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=debug    Log level (trace, debug, info, warn, error)\n", logger.LevelEnv)
			fmt.Printf("  %s=path        TOML file with operator defaults\n", config.PathEnv)
			fmt.Printf("  %s=opencv     Vision runtime: native or opencv\n", config.BackendEnv)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Logs go to stderr; stdout is for MCP protocol
	log := logger.NewConsole(logger.LevelFromEnv())
	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("starting " + server.Name)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	srv, err := server.New(cfg, server.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	runErr := srv.Run()
	if err := srv.Close(); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("server error")
	}
}
