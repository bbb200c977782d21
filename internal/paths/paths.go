// Package paths locates the hbnb configuration directory and the directory
// that holds the store file.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user configuration and data directories.
const AppName = "hbnb"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "HBNB_CONFIG_DIR"
	EnvDataDir   = "HBNB_DATA_DIR"
)

// host reads the environment and platform directories. Tests replace it.
var host = struct {
	goos          string
	getenv        func(string) string
	getwd         func() (string, error)
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	getenv:        os.Getenv,
	getwd:         os.Getwd,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/hbnb on Linux, falling back to
// ~/.config/hbnb. Other platforms use os.UserConfigDir()/hbnb.
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns $XDG_DATA_HOME/hbnb on Linux, falling back to
// ~/.local/share/hbnb. Other platforms share the config directory.
// "hbnb init --user-data" stores the records here.
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", ".local", "share")
}

func userDir(xdgVar string, homeRel ...string) (string, error) {
	if host.goos != "linux" {
		dir, err := host.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := host.getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := host.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, homeRel...), AppName)...), nil
}

// ResolveConfigDir picks the configuration directory: the --config-dir flag,
// then HBNB_CONFIG_DIR, then DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok, err := firstAbs(flag, host.getenv(EnvConfigDir)); ok {
		return dir, err
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the directory of the store file: the --data-dir flag,
// then HBNB_DATA_DIR, then data_dir from config.yaml, then the working
// directory. The environment beats the file the same way it does for every
// other config key.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir, ok, err := firstAbs(flag, host.getenv(EnvDataDir), configValue); ok {
		return dir, err
	}
	return host.getwd()
}

// firstAbs returns the first non-empty candidate made absolute. ok is false
// when every candidate is empty.
func firstAbs(candidates ...string) (dir string, ok bool, err error) {
	for _, c := range candidates {
		if c != "" {
			dir, err = filepath.Abs(c)
			return dir, true, err
		}
	}
	return "", false, nil
}
