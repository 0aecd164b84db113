// cmd/client is an interactive console for the demand tools.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/assistant"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/client"
	"github.com/andresuchdata/merchant-agent/backend-go/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")
	logger.UseJSON(os.Stderr)

	app := &cli.App{
		Name:  "client",
		Usage: "Query demand forecasts and purchase recommendations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "Tool server base URL",
				Value:   "http://localhost:8080/api/v1",
				EnvVars: []string{"TOOL_SERVER_URL"},
			},
			&cli.StringFlag{
				Name:    "gemini-api-key",
				Usage:   "Enables free-text requests through Gemini",
				EnvVars: []string{"GEMINI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "gemini-model",
				Value:   "gemini-1.5-flash",
				EnvVars: []string{"GEMINI_MODEL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("client failed")
	}
}

func run(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))
	ctx := c.Context

	tc := client.New(c.String("server"), nil)
	descs, err := tc.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.String("server"), err)
	}
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	fmt.Printf("Connected. Tools: [%s]\n", strings.Join(names, ", "))

	var fallback assistant.Interpreter
	if key := c.String("gemini-api-key"); key != "" {
		gemini, err := assistant.NewGeminiInterpreter(ctx, key, c.String("gemini-model"), descs)
		if err != nil {
			return err
		}
		defer gemini.Close()
		fallback = gemini
	}

	return repl(ctx, assistant.New(tc, fallback, os.Stdout), os.Stdin, os.Stdout)
}

func repl(ctx context.Context, a *assistant.Assistant, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nQuery (or 'quit'): ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := a.Handle(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
		if quit {
			return nil
		}
	}
}
