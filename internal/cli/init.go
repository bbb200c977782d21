package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/hbnb/internal/paths"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	FileName string `yaml:"file_name,omitempty"`
	LogLevel string `yaml:"log_level"`
}

func newInitCmd(flags *rootFlags) *cobra.Command {
	var (
		backend  string
		userData bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml and create the store file",
		Long: `Create the configuration directory with a default config.yaml, then
create the store file if it does not exist yet. An existing config.yaml is
left unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags, backend, userData)
		},
	}
	cmd.Flags().StringVar(&backend, "backend", defaultBackend, "store backend (json, sqlite)")
	cmd.Flags().BoolVar(&userData, "user-data", false, "keep the store in the per-user data directory")
	return cmd
}

func runInit(cmd *cobra.Command, flags *rootFlags, backend string, userData bool) error {
	if err := (types.Config{Backend: backend}).Validate(); err != nil {
		return userError("backend %q: %s", backend, err)
	}

	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %s", err)
	}

	dataDir := flags.dataDir
	if dataDir == "" && userData {
		if dataDir, err = paths.DefaultDataDir(); err != nil {
			return sysError("resolve data dir: %s", err)
		}
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError("create config directory: %s", err)
	}

	configPath := filepath.Join(configDir, configFileExt)
	written, err := writeConfigIfMissing(configPath, configFile{
		Backend:  backend,
		DataDir:  dataDir,
		LogLevel: defaultLogLevel,
	})
	if err != nil {
		return sysError("write config: %s", err)
	}

	// Reload the config so the store is created where later runs will look.
	if flags.config, err = loadConfig(configDir); err != nil {
		return sysError("load config: %s", err)
	}

	engine, err := flags.openEngine()
	if err != nil {
		return err
	}
	if err := engine.Save(); err != nil {
		return sysError("initialize store: %s", err)
	}

	out := cmd.OutOrStdout()
	if written {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	} else if existing, err := readConfigFile(configPath); err == nil {
		fmt.Fprintf(out, "Keeping %s (backend %s)\n", configPath, existing.Backend)
	}
	fmt.Fprintf(out, "Store ready with %d records\n", len(engine.All()))
	return nil
}

// writeConfigIfMissing creates config.yaml with cfg if the file does not
// exist. It reports whether the file was written.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// readConfigFile parses an existing config.yaml.
func readConfigFile(path string) (configFile, error) {
	var cfg configFile
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
