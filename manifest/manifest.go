// Package manifest handles daedalus.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/chazu/daedalus/vm"
)

// FileName is the name of the configuration file.
const FileName = "daedalus.toml"

// Manifest represents a daedalus.toml configuration.
type Manifest struct {
	Program Program  `toml:"program"`
	Globals Globals  `toml:"globals"`
	VM      VMConfig `toml:"vm"`
	Log     Log      `toml:"log"`
	State   State    `toml:"state"`

	// Dir is the directory containing the daedalus.toml file (set at load time).
	Dir string `toml:"-"`
}

// Program locates the compiled script image.
type Program struct {
	Path string `toml:"path"`
}

// Globals names the conventional instance variables.
type Globals struct {
	Self   string `toml:"self"`
	Other  string `toml:"other"`
	Victim string `toml:"victim"`
	Item   string `toml:"item"`
}

// VMConfig tunes the interpreter.
type VMConfig struct {
	StackCapacity int `toml:"stack-capacity"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// State configures save state output.
type State struct {
	Output string `toml:"output"`
}

// Default returns the configuration used when no daedalus.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Globals == (Globals{}) {
		m.Globals = Globals{Self: "self", Other: "other", Victim: "victim", Item: "item"}
	}
	if m.VM.StackCapacity <= 0 {
		m.VM.StackCapacity = 1024
	}
	if m.Log.Verbosity == 0 {
		m.Log.Verbosity = 1
	}
	if m.State.Output == "" {
		m.State.Output = "state.cbor"
	}
}

// Load parses a daedalus.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a daedalus.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// resolve makes p absolute relative to the manifest directory.
func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// ProgramPath returns the absolute path of the configured image, or "".
func (m *Manifest) ProgramPath() string { return m.resolve(m.Program.Path) }

// StatePath returns the absolute path of the save state file.
func (m *Manifest) StatePath() string { return m.resolve(m.State.Output) }

// LogPath returns the absolute path of the log file, nil for stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.File == "" {
		return nil
	}
	p := m.resolve(m.Log.File)
	return &p
}

// VMOptions returns the interpreter options the manifest configures.
func (m *Manifest) VMOptions() []vm.Option {
	g := m.Globals
	return []vm.Option{
		vm.WithGlobals(g.Self, g.Other, g.Victim, g.Item),
		vm.WithStackCapacity(m.VM.StackCapacity),
	}
}
