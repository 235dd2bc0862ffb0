// Package profile stores named deployment targets: a database to EXPLAIN
// against plus the hardware and cost model files that describe it.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "profiles.yaml"

var configDirFunc = configDir

var ErrNotFound = errors.New("profile not found")

type Profile struct {
	Name      string `yaml:"name"`
	ConnStr   string `yaml:"conn_str,omitempty"`
	Hardware  string `yaml:"hardware,omitempty"`
	CostModel string `yaml:"cost_model,omitempty"`
}

// Target is what a command runs against once flags and profiles are merged.
type Target struct {
	ConnStr   string
	Hardware  string
	CostModel string
}

type Config struct {
	Default  string    `yaml:"default,omitempty"`
	Profiles []Profile `yaml:"profiles"`
}

func Get(name string) (Profile, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, fmt.Errorf("no profiles configured")
		}
		return Profile{}, err
	}

	for _, p := range cfg.Profiles {
		if p.Name == name {
			return p, nil
		}
	}

	return Profile{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func List() ([]Profile, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return cfg.Profiles, nil
}

// Add stores p, replacing any profile with the same name.
func Add(p Profile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if p.ConnStr == "" && p.Hardware == "" && p.CostModel == "" {
		return fmt.Errorf("profile %q needs a connection string, hardware file, or cost model file", p.Name)
	}

	cfg, err := load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if cfg == nil {
		cfg = &Config{}
	}

	for i := range cfg.Profiles {
		if cfg.Profiles[i].Name == p.Name {
			cfg.Profiles[i] = p
			return save(cfg)
		}
	}

	cfg.Profiles = append(cfg.Profiles, p)
	return save(cfg)
}

func Remove(name string) error {
	cfg, err := load()
	if err != nil {
		return err
	}

	for i, p := range cfg.Profiles {
		if p.Name == name {
			cfg.Profiles = append(cfg.Profiles[:i], cfg.Profiles[i+1:]...)
			if cfg.Default == name {
				cfg.Default = ""
			}
			return save(cfg)
		}
	}

	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

func GetDefault() (string, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return cfg.Default, nil
}

func SetDefault(name string) error {
	cfg, err := load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if cfg == nil {
		cfg = &Config{}
	}

	found := false
	for _, p := range cfg.Profiles {
		if p.Name == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	cfg.Default = name
	return save(cfg)
}

func ClearDefault() error {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cfg.Default = ""
	return save(cfg)
}

// ResolveTarget merges explicit flags over a named profile, or over the
// default profile when no name is given. Explicit flags always win.
func ResolveTarget(db, profileName, hardwarePath, costModelPath string) (Target, error) {
	t := Target{ConnStr: db, Hardware: hardwarePath, CostModel: costModelPath}

	name := profileName
	if name == "" {
		def, err := GetDefault()
		if err != nil {
			return Target{}, err
		}
		name = def
	}
	if name == "" {
		return t, nil
	}

	p, err := Get(name)
	if err != nil {
		return Target{}, err
	}
	if t.ConnStr == "" {
		t.ConnStr = p.ConnStr
	}
	if t.Hardware == "" {
		t.Hardware = p.Hardware
	}
	if t.CostModel == "" {
		t.CostModel = p.CostModel
	}
	return t, nil
}

func load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return &cfg, nil
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(base, "accelplan"), nil
}

// ConfigDir is the directory holding profiles.yaml.
func ConfigDir() (string, error) {
	return configDirFunc()
}

func configPath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func ensureConfigDir() error {
	dir, err := configDirFunc()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

func save(cfg *Config) error {
	if err := ensureConfigDir(); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}

	return nil
}
