// Command solve runs turtle walks and keypad codes from the command line
// without starting a server. Instructions are read from --input or stdin.
//
//	solve turtle -i directions.txt
//	solve keypad --layout diamond < lines.txt
//	solve keypads
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/gridwalk/nav/config"
	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
	"github.com/wricardo/mcp-training/gridwalk/nav/service"
	"github.com/wricardo/mcp-training/gridwalk/nav/session"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "solve: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "solve",
		Usage: "walk turtle turn lists and keypad lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing keypad layouts",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "turtle",
				Usage: "walk a comma-separated turn list from the origin facing north",
				Flags: []cli.Flag{inputFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					navService, err := buildService(cmd.String("config-dir"))
					if err != nil {
						return err
					}
					text, err := readInput(cmd)
					if err != nil {
						return err
					}

					result, err := navService.WalkTurtle(ctx, text)
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						return writeJSON(cmd.Root().Writer, result)
					}
					printTurtle(cmd.Root().Writer, result)
					return nil
				},
			},
			{
				Name:  "keypad",
				Usage: "walk U/D/L/R lines over a keypad and print the code",
				Flags: []cli.Flag{
					inputFlag(),
					&cli.StringSliceFlag{
						Name:    "layout",
						Aliases: []string{"l"},
						Usage:   "keypad layout to walk (repeatable, defaults to every built-in layout)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					navService, err := buildService(cmd.String("config-dir"))
					if err != nil {
						return err
					}
					text, err := readInput(cmd)
					if err != nil {
						return err
					}

					layouts := cmd.StringSlice("layout")
					if len(layouts) == 0 {
						for _, c := range engine.BuiltinKeypadConfigs() {
							layouts = append(layouts, c.Name)
						}
					}

					var results []*service.KeypadResult
					for _, layout := range layouts {
						result, err := navService.KeypadCode(ctx, layout, text)
						if err != nil {
							return err
						}
						results = append(results, result)
					}

					if cmd.Bool("json") {
						return writeJSON(cmd.Root().Writer, results)
					}
					for _, result := range results {
						fmt.Fprintf(cmd.Root().Writer, "%s: %s\n", result.Keypad, result.Code)
					}
					return nil
				},
			},
			{
				Name:  "keypads",
				Usage: "list keypad layouts",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					navService, err := buildService(cmd.String("config-dir"))
					if err != nil {
						return err
					}
					keypads, err := navService.ListKeypads(ctx)
					if err != nil {
						return err
					}

					if cmd.Bool("json") {
						return writeJSON(cmd.Root().Writer, keypads)
					}
					for _, k := range keypads {
						source := k.Filename
						if k.Builtin {
							source = "built-in"
						}
						fmt.Fprintf(cmd.Root().Writer, "%-10s %2d buttons, start %s (%s)\n", k.KeypadID, k.Buttons, k.Start, source)
					}
					return nil
				},
			},
		},
	}
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "file to read instructions from (- or empty for stdin)",
	}
}

// buildService wires an in-process service. A missing config directory only
// leaves the built-in layouts available.
func buildService(configDir string) (service.NavService, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		configDir = ""
	}

	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	return service.NewNavService(session.NewManager(), configManager), nil
}

func readInput(cmd *cli.Command) (string, error) {
	path := cmd.String("input")

	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.Root().Reader
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTurtle(w io.Writer, result *service.TurtleResult) {
	fmt.Fprintf(w, "final: %s facing %s\n", result.Final.Position, result.Final.Heading)
	fmt.Fprintf(w, "distance: %d\n", result.Distance)
	if result.FirstRevisit != nil {
		fmt.Fprintf(w, "first revisit: %s distance %d\n", *result.FirstRevisit, *result.RevisitDistance)
	} else {
		fmt.Fprintln(w, "first revisit: none")
	}
}
