package console

import (
	"fmt"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

type command struct {
	run  func(c *Console, args []string) error
	help string
}

var commands = map[string]command{
	"create": {
		run:  (*Console).create,
		help: "Creates a new instance of <class>, saves it and prints its id.\nUsage: create <class>",
	},
	"show": {
		run:  (*Console).show,
		help: "Prints the string representation of an instance.\nUsage: show <class> <id>",
	},
	"destroy": {
		run:  (*Console).destroy,
		help: "Deletes an instance and saves the change.\nUsage: destroy <class> <id>",
	},
	"all": {
		run:  (*Console).all,
		help: "Prints every instance, or every instance of <class>.\nUsage: all [<class>]",
	},
	"update": {
		run:  (*Console).update,
		help: "Sets one attribute of an instance and saves it.\nUsage: update <class> <id> <attribute> \"<value>\"",
	},
}

// kindArg returns the validated kind name from args[0].
func kindArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", errKindMissing
	}
	if !types.IsKind(args[0]) {
		return "", fmt.Errorf("%w: %q", types.ErrUnknownKind, args[0])
	}
	return args[0], nil
}

// lookup resolves "<class> <id>" to a registered record.
func (c *Console) lookup(args []string) (types.Record, error) {
	kind, err := kindArg(args)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, errIDMissing
	}
	return c.store.Get(kind, args[1])
}

// create takes exactly one argument; with more it does nothing.
func (c *Console) create(args []string) error {
	if len(args) > 1 {
		return nil
	}
	kind, err := kindArg(args)
	if err != nil {
		return err
	}
	r, err := c.store.Create(kind)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, r.Base().ID)
	return nil
}

func (c *Console) show(args []string) error {
	r, err := c.lookup(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, types.Render(r))
	return nil
}

func (c *Console) destroy(args []string) error {
	if _, err := c.lookup(args); err != nil {
		return err
	}
	return c.store.Delete(args[0], args[1])
}

func (c *Console) all(args []string) error {
	filter := ""
	if len(args) > 0 {
		kind, err := kindArg(args)
		if err != nil {
			return err
		}
		filter = kind
	}
	for _, r := range c.store.Filter(filter) {
		fmt.Fprintln(c.out, types.Render(r))
	}
	return nil
}

func (c *Console) update(args []string) error {
	if _, err := c.lookup(args); err != nil {
		return err
	}
	if len(args) < 3 {
		return errAttrMissing
	}
	if len(args) < 4 {
		return errValueMissing
	}
	return c.store.Update(args[0], args[1], args[2], unquote(args[3]))
}
