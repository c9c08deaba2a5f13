package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
)

// Extensions lists the layout file formats in lookup order
var Extensions = []string{".json", ".hcl"}

// hclKeypadFile is the HCL form of a layout file:
//
//	keypad "phone" {
//	  description = "Telephone keypad"
//	  layout      = ["123", "456", "789", "*0#"]
//	  start       = "5"
//	}
type hclKeypadFile struct {
	Keypad hclKeypad `hcl:"keypad,block"`
}

type hclKeypad struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Layout      []string `hcl:"layout"`
	Start       string   `hcl:"start"`
	Blank       string   `hcl:"blank,optional"`
}

// IsLayoutFile reports whether filename has a supported layout extension
func IsLayoutFile(filename string) bool {
	ext := filepath.Ext(filename)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// TrimExtension strips a supported layout extension from name
func TrimExtension(name string) string {
	if IsLayoutFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// Decode parses layout data, choosing the format from the filename extension.
// Errors wrap ErrInvalidConfig.
func Decode(filename string, data []byte) (*engine.KeypadConfig, error) {
	if filepath.Ext(filename) == ".hcl" {
		return decodeHCL(filename, data)
	}

	var config engine.KeypadConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, filepath.Base(filename), err)
	}
	return &config, nil
}

func decodeHCL(filename string, data []byte) (*engine.KeypadConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse %s: %s", ErrInvalidConfig, filepath.Base(filename), diags.Error())
	}

	var parsed hclKeypadFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode %s: %s", ErrInvalidConfig, filepath.Base(filename), diags.Error())
	}

	return &engine.KeypadConfig{
		Name:        parsed.Keypad.Name,
		Description: parsed.Keypad.Description,
		Layout:      parsed.Keypad.Layout,
		Start:       parsed.Keypad.Start,
		Blank:       parsed.Keypad.Blank,
	}, nil
}
