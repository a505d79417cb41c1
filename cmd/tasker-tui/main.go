package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"tasker/internal/client"
	"tasker/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("tasker-tui %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	server := flag.String("server", getEnv("TASKER_URL", "http://localhost:3000"), "tasker server URL")
	token := flag.String("token", os.Getenv("TASKER_TOKEN"), "bearer token for servers started with JWT_KEY")
	flag.Parse()

	var opts []client.Option
	if *token != "" {
		opts = append(opts, client.WithToken(*token))
	}
	c := client.New(*server, opts...)

	// Connection logs would draw over the alt screen.
	log.SetOutput(io.Discard)

	app := ui.NewApp(c)
	p := tea.NewProgram(app, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := c.Subscribe()
	sub.OnConnect = func() { p.Send(ui.ConnectedMsg{}) }
	sub.OnEvent = func(e client.Event) { p.Send(ui.RemoteEventMsg{Event: e}) }
	go func() {
		if err := sub.Run(ctx); err != nil && ctx.Err() == nil {
			p.Send(ui.DisconnectedMsg{Err: err})
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
