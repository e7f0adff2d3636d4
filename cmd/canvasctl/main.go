// Package main is canvasctl, the command line companion of the mailcanvas
// server. It renders element lists to HTML offline, lists the starter
// catalog, and talks to a running server to save, upload and download
// templates.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
)

// usageErrorHandler returns usage errors unchanged; they are reported once
// on exit.
func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func newApp() *cli.Command {
	serverFlag := &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Value:   "http://localhost:8080",
		Usage:   "mailcanvas server `URL`",
		Sources: cli.EnvVars("MAILCANVAS_URL"),
	}
	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write to `FILE` instead of STDOUT",
	}

	return &cli.Command{
		Name:            "canvasctl",
		Usage:           "render, inspect and publish mailcanvas email templates",
		HideHelpCommand: true,
		OnUsageError:    usageErrorHandler,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug output to STDERR"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := slog.LevelWarn
			if cmd.Bool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Renders an element list (JSON) to HTML",
				ArgsUsage: "[SOURCE]",
				Action:    runRender,
				Flags: []cli.Flag{
					outputFlag,
					&cli.BoolFlag{Name: "fragment", Usage: "output only the canvas fragment, not the standalone document"},
					&cli.BoolFlag{Name: "raw", Usage: "interpolate values without escaping"},
					&cli.BoolFlag{Name: "format", Usage: "normalize indentation like the code view"},
					&cli.BoolFlag{Name: "layout", Usage: "wrap the fragment in the email layout"},
					&cli.StringFlag{Name: "title", Usage: "email `TITLE` used with --layout"},
				},
			},
			{
				Name:      "format",
				Usage:     "Normalizes the indentation of an HTML document",
				ArgsUsage: "[SOURCE]",
				Action:    runFormat,
				Flags:     []cli.Flag{outputFlag},
			},
			{
				Name:      "catalog",
				Usage:     "Lists the starter templates, or renders one",
				ArgsUsage: "[ID]",
				Action:    runCatalog,
				Flags:     []cli.Flag{outputFlag},
			},
			{
				Name:      "save",
				Usage:     "Saves an element list as a template on the server",
				ArgsUsage: "[SOURCE]",
				Action:    runSave,
				Flags: []cli.Flag{
					serverFlag,
					&cli.StringFlag{Name: "name", Required: true, Usage: "template `NAME`"},
					&cli.StringFlag{Name: "title", Required: true, Usage: "email `TITLE`"},
					&cli.StringFlag{Name: "type", Value: "custom", Usage: "template `TYPE`"},
				},
			},
			{
				Name:      "upload",
				Usage:     "Uploads an image and prints its hosted URL",
				ArgsUsage: "FILE",
				Action:    runUpload,
				Flags:     []cli.Flag{serverFlag},
			},
			{
				Name:   "list",
				Usage:  "Lists saved templates, newest first",
				Action: runList,
				Flags: []cli.Flag{
					serverFlag,
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "at most `N` templates"},
					&cli.IntFlag{Name: "offset", Usage: "skip the first `N` templates"},
				},
			},
			{
				Name:      "delete",
				Usage:     "Deletes a saved template",
				ArgsUsage: "ID",
				Action:    runDelete,
				Flags:     []cli.Flag{serverFlag},
			},
			{
				Name:      "download",
				Usage:     "Downloads a saved template as a standalone HTML document",
				ArgsUsage: "ID",
				Action:    runDownload,
				Flags:     []cli.Flag{serverFlag, outputFlag},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "canvasctl: %v\n", err)
		os.Exit(1)
	}
}
