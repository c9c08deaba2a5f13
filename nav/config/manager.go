package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
	"github.com/wricardo/mcp-training/gridwalk/nav/service"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoConfigDir is returned by SaveKeypad on a built-in only manager
	ErrNoConfigDir = errors.New("no config directory")
)

// DefaultKeypad is the layout used when a caller names none
const DefaultKeypad = "standard"

// Manager handles keypad layout loading and caching.
// Layouts in configDir shadow the built-in layouts of the same name.
type Manager struct {
	configDir     string
	defaultKeypad *engine.Keypad
	configs       map[string]*engine.KeypadConfig
	keypads       map[string]*engine.Keypad
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configDir serves
// the built-in layouts only.
func NewManager(configDir string) (*Manager, error) {
	if configDir != "" {
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.KeypadConfig),
		keypads:   make(map[string]*engine.Keypad),
	}

	if err := m.loadDefaultKeypad(); err != nil {
		return nil, fmt.Errorf("failed to load default keypad: %w", err)
	}

	return m, nil
}

// LoadKeypadConfig loads a layout definition by name
func (m *Manager) LoadKeypadConfig(name string) (*engine.KeypadConfig, error) {
	config, _, err := m.load(name)
	return config, err
}

// LoadKeypad loads a validated keypad by name
func (m *Manager) LoadKeypad(name string) (*engine.Keypad, error) {
	_, keypad, err := m.load(name)
	return keypad, err
}

func (m *Manager) load(name string) (*engine.KeypadConfig, *engine.Keypad, error) {
	name = TrimExtension(name)

	m.mu.RLock()
	if keypad, exists := m.keypads[name]; exists {
		config := m.configs[name]
		m.mu.RUnlock()
		return config, keypad, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if keypad, exists := m.keypads[name]; exists {
		return m.configs[name], keypad, nil
	}

	config, err := m.readConfig(name)
	if err != nil {
		return nil, nil, err
	}

	if err := engine.ValidateKeypadConfig(config); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	keypad, err := engine.NewKeypad(config)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[name] = config
	m.keypads[name] = keypad
	return config, keypad, nil
}

// readConfig reads name from disk, trying each layout format in turn and
// falling back to the built-in layouts
func (m *Manager) readConfig(name string) (*engine.KeypadConfig, error) {
	if m.configDir == "" {
		return readBuiltin(name)
	}

	for _, ext := range Extensions {
		filename := filepath.Join(m.configDir, name+ext)
		data, err := os.ReadFile(filename)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config, err := Decode(filename, data)
		if err != nil {
			return nil, err
		}
		if config.Name == "" {
			config.Name = name
		}
		return config, nil
	}

	return readBuiltin(name)
}

func readBuiltin(name string) (*engine.KeypadConfig, error) {
	if config := builtin(name); config != nil {
		return config, nil
	}
	return nil, service.ErrKeypadNotFound
}

// ListKeypads returns information about all available layouts, files first
// and then any built-in layout not shadowed by a file
func (m *Manager) ListKeypads() ([]*service.KeypadInfo, error) {
	var entries []os.DirEntry
	if m.configDir != "" {
		var err error
		entries, err = os.ReadDir(m.configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read config directory: %w", err)
		}
	}

	var keypads []*service.KeypadInfo
	seen := make(map[string]bool)

	// Walk formats in lookup order so Filename names the file load reads
	for _, ext := range Extensions {
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
				continue
			}

			name := TrimExtension(entry.Name())
			if seen[name] {
				continue
			}
			config, keypad, err := m.load(name)
			if err != nil {
				// Skip invalid layouts
				continue
			}

			info := service.NewKeypadInfo(name, config, keypad)
			info.Filename = entry.Name()
			keypads = append(keypads, info)
			seen[name] = true
		}
	}

	var builtins []*service.KeypadInfo
	for _, config := range engine.BuiltinKeypadConfigs() {
		if seen[config.Name] {
			continue
		}
		_, keypad, err := m.load(config.Name)
		if err != nil {
			continue
		}
		info := service.NewKeypadInfo(config.Name, config, keypad)
		info.Builtin = true
		builtins = append(builtins, info)
	}
	sort.Slice(builtins, func(i, j int) bool {
		return builtins[i].KeypadID < builtins[j].KeypadID
	})

	return append(keypads, builtins...), nil
}

// GetDefault returns the default keypad
func (m *Manager) GetDefault() *engine.Keypad {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultKeypad
}

// SetDefault sets the default keypad by name
func (m *Manager) SetDefault(name string) error {
	keypad, err := m.LoadKeypad(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultKeypad = keypad
	return nil
}

// RefreshCache drops every cached layout so the next load rereads the directory
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.KeypadConfig)
	m.keypads = make(map[string]*engine.Keypad)
	m.mu.Unlock()

	return m.loadDefaultKeypad()
}

func (m *Manager) loadDefaultKeypad() error {
	keypad, err := m.LoadKeypad(DefaultKeypad)
	if errors.Is(err, ErrInvalidConfig) {
		// A broken standard.json must not take the server down
		keypad, err = engine.StandardKeypad(), nil
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultKeypad = keypad
	m.mu.Unlock()
	return nil
}

// SaveKeypad validates config and writes it to disk as name.json
func (m *Manager) SaveKeypad(name string, config *engine.KeypadConfig) error {
	name = TrimExtension(name)
	if m.configDir == "" {
		return ErrNoConfigDir
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid keypad name %q", ErrInvalidConfig, name)
	}
	if config.Name == "" {
		config.Name = name
	}

	if err := engine.ValidateKeypadConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	keypad, err := engine.NewKeypad(config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.keypads[name] = keypad
	m.mu.Unlock()

	return nil
}

func builtin(name string) *engine.KeypadConfig {
	for _, config := range engine.BuiltinKeypadConfigs() {
		if config.Name == name {
			return config
		}
	}
	return nil
}
