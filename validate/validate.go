// Command validate provides a small CLI that validates keypad layout files
// (JSON or HCL) in a configs directory (../configs by default). It checks:
//   - File syntax and required fields
//   - Layout shape, duplicate labels and the start button
//   - That the file name matches the layout name
//   - Connectivity: every button is reachable from the start button
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/gridwalk/nav/config"
	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single layout file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	layout, err := config.Decode(filePath, data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), config.ErrInvalidConfig.Error()+": "))
		return result
	}

	if err := engine.ValidateKeypadConfig(layout); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	if want := config.TrimExtension(result.File); layout.Name != want {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Name %q does not match file name %q", layout.Name, want))
	}

	keypad, err := engine.NewKeypad(layout)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ %d buttons, start %s", keypad.Topology().Len(), keypad.StartLabel()))

	connectivity := validateConnectivity(keypad)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	return result
}

// validateConnectivity flood-fills from the start button using single
// U/D/L/R moves and reports buttons that can never be pressed.
func validateConnectivity(keypad *engine.Keypad) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	walker := keypad.Walker(engine.Absorb)
	start := walker.Start()

	visited := map[engine.Coordinate]bool{}
	queue := []engine.Coordinate{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, d := range engine.AllDirections() {
			if !walker.CanMove(current, d) {
				continue
			}
			next := current.Add(d.Vector())
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	var unreachable []string
	for _, label := range keypad.Buttons() {
		pos, _ := keypad.Position(label)
		if !visited[pos] {
			unreachable = append(unreachable, fmt.Sprintf("%s at %s", label, pos))
		}
	}

	buttons := keypad.Topology().Len()
	if len(unreachable) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: %d/%d buttons unreachable from %s", len(unreachable), buttons, keypad.StartLabel()))
		for _, button := range unreachable {
			result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: %s", button))
		}
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: All %d buttons reachable from %s", buttons, keypad.StartLabel()))
	}

	return result
}

// main scans the configs directory for layout files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := flag.String("config-dir", "../configs", "Directory containing keypad layouts")
	flag.Parse()

	var files []string
	for _, ext := range config.Extensions {
		matches, err := filepath.Glob(filepath.Join(*configDir, "*"+ext))
		if err != nil {
			fmt.Printf("Error finding config files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All layouts are valid!")
	} else {
		fmt.Println("❌ Some layouts have errors")
		os.Exit(1)
	}
}
