// Command analyze prints quick, human-readable heuristics about keypad
// layouts in the project's configs directory and the built-in layouts. It
// summarizes dimensions, button counts and the start button, and highlights
// dead-end buttons that only one move can leave.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wricardo/mcp-training/gridwalk/nav/config"
	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
)

// Analysis summarizes one keypad layout
type Analysis struct {
	Name             string
	Rows             int
	Columns          int
	Buttons          int
	Start            string
	DeadEnds         []string
	Farthest         string
	FarthestDistance int
}

func main() {
	configDir := flag.String("config-dir", "configs", "Directory containing keypad layouts")
	flag.Parse()

	manager, err := config.NewManager(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	keypads, err := manager.ListKeypads()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, info := range keypads {
		fmt.Printf("\n=== Analyzing %s ===\n", info.KeypadID)
		keypad, err := manager.LoadKeypad(info.KeypadID)
		if err != nil {
			fmt.Printf("Error loading keypad: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, analyzeKeypad(keypad))
	}
}

func analyzeKeypad(keypad *engine.Keypad) Analysis {
	layout := keypad.Layout()
	a := Analysis{
		Name:    keypad.Name(),
		Rows:    len(layout),
		Buttons: keypad.Topology().Len(),
		Start:   keypad.StartLabel(),
	}
	for _, row := range layout {
		if n := len([]rune(row)); n > a.Columns {
			a.Columns = n
		}
	}

	walker := keypad.Walker(engine.Absorb)
	start := walker.Start()
	a.FarthestDistance = -1

	for _, label := range keypad.Buttons() {
		pos, _ := keypad.Position(label)

		exits := 0
		for _, d := range engine.AllDirections() {
			if walker.CanMove(pos, d) {
				exits++
			}
		}
		if exits == 1 {
			a.DeadEnds = append(a.DeadEnds, label)
		}

		if dist := engine.ManhattanDistance(start, pos); dist > a.FarthestDistance {
			a.Farthest = label
			a.FarthestDistance = dist
		}
	}

	return a
}

func printAnalysis(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Columns, a.Rows)
	fmt.Fprintf(w, "Buttons: %d\n", a.Buttons)
	fmt.Fprintf(w, "Start Button: %s\n", a.Start)
	fmt.Fprintf(w, "Farthest Button: %s (%d moves from start)\n", a.Farthest, a.FarthestDistance)

	if len(a.DeadEnds) > 0 {
		fmt.Fprintf(w, "⚠️  %d dead-end buttons (one exit): %s\n", len(a.DeadEnds), strings.Join(a.DeadEnds, " "))
	} else {
		fmt.Fprintf(w, "✅ Every button has at least two exits\n")
	}
}
