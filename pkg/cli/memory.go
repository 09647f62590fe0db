package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/aura-assist/aura/pkg/memory"
)

func memoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Inspect and edit saved people, places, and contacts",
		Commands: []*cli.Command{
			memoryShowCommand(),
			memorySetUserCommand(),
			memoryAddPersonCommand(),
			memoryAddLocationCommand(),
			memoryAddContactCommand(),
			memoryRemoveCommand(),
		},
	}
}

// openStore loads the persisted memory file and wires write-back.
func openStore() (*memory.Store, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store := memory.NewStore()
	if err := store.LoadFile(cfg.DataPath); err != nil {
		return nil, err
	}
	store.SetOnChange(func(snap memory.Snapshot) {
		if err := memory.SaveSnapshot(cfg.DataPath, snap); err != nil {
			log.Error("persisting memory failed", "error", err)
		}
	})
	return store, nil
}

func memoryShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print saved data as the session context block",
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			fmt.Print(store.Snapshot().ContextBlock())
			return nil
		},
	}
}

func memorySetUserCommand() *cli.Command {
	return &cli.Command{
		Name:      "set-user",
		Usage:     "Set the user's display name",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, c *cli.Command) error {
			name := c.Args().First()
			if name == "" {
				return fmt.Errorf("name is required")
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			store.Update(memory.Mutation{UserName: &name})
			return nil
		},
	}
}

func memoryAddPersonCommand() *cli.Command {
	return &cli.Command{
		Name:      "add-person",
		Usage:     "Save or update a person profile",
		ArgsUsage: "<name> <relationship>",
		Action: func(ctx context.Context, c *cli.Command) error {
			name, rel := c.Args().Get(0), c.Args().Get(1)
			if name == "" || rel == "" {
				return fmt.Errorf("name and relationship are required")
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			store.UpsertPerson(name, rel)
			return nil
		},
	}
}

func memoryAddLocationCommand() *cli.Command {
	return &cli.Command{
		Name:      "add-location",
		Usage:     "Save or update a location",
		ArgsUsage: "<name> <description>",
		Action: func(ctx context.Context, c *cli.Command) error {
			name, desc := c.Args().Get(0), c.Args().Get(1)
			if name == "" || desc == "" {
				return fmt.Errorf("name and description are required")
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			store.UpsertLocation(name, desc)
			return nil
		},
	}
}

func memoryAddContactCommand() *cli.Command {
	return &cli.Command{
		Name:      "add-contact",
		Usage:     "Save or update an emergency contact",
		ArgsUsage: "<name> <phone>",
		Action: func(ctx context.Context, c *cli.Command) error {
			name, phone := c.Args().Get(0), c.Args().Get(1)
			if name == "" || phone == "" {
				return fmt.Errorf("name and phone are required")
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			store.UpsertContact(name, phone)
			return nil
		},
	}
}

func memoryRemoveCommand() *cli.Command {
	var kind string
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove a saved record by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "kind",
				Aliases:     []string{"k"},
				Usage:       "Record kind: person, location, or contact",
				Value:       "person",
				Destination: &kind,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("id is required")
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			var removed bool
			switch kind {
			case "person":
				removed = store.DeletePersonByID(id)
			case "location":
				removed = store.DeleteLocationByID(id)
			case "contact":
				removed = store.DeleteContactByID(id)
			default:
				return fmt.Errorf("unknown kind %q", kind)
			}
			if !removed {
				return fmt.Errorf("no %s with id %q", kind, id)
			}
			return nil
		},
	}
}
