package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hbnb/internal/console"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// consoleCmds lists the console commands also available as subcommands.
var consoleCmds = []struct {
	use   string
	short string
}{
	{"create <class>", "Create a record and print its id"},
	{"show <class> <id>", "Print a record"},
	{"destroy <class> <id>", "Delete a record"},
	{"all [<class>]", "Print every record, optionally of one class"},
	{"update <class> <id> <attribute> <value>", "Set one attribute of a record"},
}

// newConsoleCmds returns one subcommand per console command. Each runs the
// command once against the store and exits.
func newConsoleCmds(flags *rootFlags) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(consoleCmds))
	for _, cc := range consoleCmds {
		cmds = append(cmds, &cobra.Command{
			Use:   cc.use,
			Short: cc.short,
			Long:  fmt.Sprintf("%s.\n\nValid classes: %s", cc.short, strings.Join(types.Kinds(), ", ")),
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOnce(cmd, flags, args)
			},
		})
	}
	return cmds
}

// runOnce dispatches a single console command. Console errors are printed to
// stderr with their console message and exit with exitUserError.
func runOnce(cmd *cobra.Command, flags *rootFlags, args []string) error {
	engine, err := flags.openEngine()
	if err != nil {
		return err
	}

	c := console.New(engine, cmd.OutOrStdout(), console.WithPrompt(""))
	if _, err := c.Dispatch(cmd.Name(), args); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), console.Message(err))
		return &exitError{code: exitUserError}
	}
	return nil
}
