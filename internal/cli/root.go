// Package cli implements the hbnb command-line interface. The root command
// runs the interactive console; subcommands run a single console command,
// initialize configuration or print the version.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/hbnb/internal/console"
	"github.com/mesh-intelligence/hbnb/internal/paths"
	"github.com/mesh-intelligence/hbnb/internal/storage"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values and the state loaded before any
// subcommand runs.
type rootFlags struct {
	configDir string
	dataDir   string

	// Set by PersistentPreRunE.
	config *viper.Viper
	logger *slog.Logger
}

// exitError carries the process exit code for a failed command. The message
// has already been printed when msg is empty.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// NewRootCmd creates the top-level "hbnb" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "hbnb",
		Short: "Interactive console for HBNB records",
		Long: `hbnb manages Users, Places, States, Cities, Amenities and Reviews.
Without a subcommand it starts an interactive console reading commands from
standard input; every change is saved to a single store file.`,
		Args: cobra.NoArgs,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/hbnb)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "directory holding the store file (default: working directory)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(flags))
	for _, cmd := range newConsoleCmds(flags) {
		root.AddCommand(cmd)
	}

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		os.Exit(exitSuccess)
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.msg != "" {
			fmt.Fprintln(os.Stderr, exitErr.msg)
		}
		os.Exit(exitErr.code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitUserError)
}

// load resolves the configuration directory, reads config.yaml and builds the
// logger.
func (f *rootFlags) load(cmd *cobra.Command) error {
	// Skip config for version command
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return sysError("resolve config dir: %s", err)
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError("load config: %s", err)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.GetString(cfgKeyLogLevel))
	if err != nil {
		return userError("%s", err)
	}

	f.config = cfg
	f.logger = logger
	return nil
}

// storeConfig returns the backend configuration for this invocation.
func (f *rootFlags) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(f.dataDir, f.config.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Backend:  f.config.GetString(cfgKeyBackend),
		DataDir:  dataDir,
		FileName: f.config.GetString(cfgKeyFileName),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("backend %q: %w", cfg.Backend, err)
	}
	return cfg, nil
}

// openEngine builds the storage engine and reloads the store file. Reload
// failures are fatal to the command.
func (f *rootFlags) openEngine() (*storage.Engine, error) {
	cfg, err := f.storeConfig()
	if err != nil {
		return nil, userError("%s", err)
	}
	engine, err := storage.Open(cfg, storage.WithLogger(f.logger))
	if err != nil {
		return nil, sysError("%s", err)
	}
	f.logger.Debug("store opened", "backend", cfg.Backend, "path", cfg.Path(), "records", len(engine.All()))
	return engine, nil
}

// runConsole starts an interactive session on the command's input. The prompt
// is only shown when input is a terminal.
func runConsole(cmd *cobra.Command, flags *rootFlags) error {
	engine, err := flags.openEngine()
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	var opts []console.Option
	if !isTerminal(in) {
		opts = append(opts, console.WithPrompt(""))
	}

	c := console.New(engine, cmd.OutOrStdout(), opts...)
	if err := c.Run(in); err != nil {
		return sysError("read input: %s", err)
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, msg: fmt.Sprintf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, msg: fmt.Sprintf(format, args...)}
}
