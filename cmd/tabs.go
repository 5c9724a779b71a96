package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/histwalk/internal/state"
)

// TabsCmd returns the tabs command.
func TabsCmd() *cli.Command {
	return &cli.Command{
		Name:  "tabs",
		Usage: "Inspect or edit the browser's saved tabs and position",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List open tabs; the active tab is marked with *",
				Action: tabsListAction,
			},
			{
				Name:      "close",
				Usage:     "Close a tab by ID",
				ArgsUsage: "<id>",
				Action:    tabsCloseAction,
			},
			{
				Name:   "clear",
				Usage:  "Close every tab and forget the saved position",
				Action: tabsClearAction,
			},
			{
				Name:   "sessions",
				Usage:  "List saved session IDs (sqlite backend only)",
				Action: tabsSessionsAction,
			},
		},
		Action: tabsListAction,
	}
}

// withState loads the saved state, runs fn and saves the result when fn reports a change.
func withState(c *cli.Context, fn func(st *state.State) (bool, error)) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := state.Open(cfg.State.Backend, cfg.State.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Load(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	changed, err := fn(&st)
	if err != nil || !changed {
		return err
	}
	return store.Save(c.Context, st)
}

func tabsListAction(c *cli.Context) error {
	return withState(c, func(st *state.State) (bool, error) {
		fmt.Printf("Session: %s\n", st.SessionID)
		if st.Selection != "" {
			fmt.Printf("Position: ?%s\n", st.Selection)
		}
		if len(st.Tabs) == 0 {
			fmt.Println("No open tabs.")
			return false, nil
		}

		fmt.Println()
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\tID\tTitle\tRef")
		for _, t := range st.Tabs {
			marker := ""
			if t.ID == st.Active {
				marker = color.GreenString("*")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, t.ID, t.Title, t.Ref)
		}
		return false, tw.Flush()
	})
}

func tabsCloseAction(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("no tab ID given")
	}
	return withState(c, func(st *state.State) (bool, error) {
		if !st.Close(id) {
			return false, fmt.Errorf("no tab %q", id)
		}
		if active, ok := st.ActiveTab(); ok {
			fmt.Printf("Closed %s, active tab is now %s\n", id, active.ID)
		} else {
			fmt.Printf("Closed %s\n", id)
		}
		return true, nil
	})
}

func tabsClearAction(c *cli.Context) error {
	return withState(c, func(st *state.State) (bool, error) {
		st.Clear()
		fmt.Println("Cleared saved tabs and position.")
		return true, nil
	})
}

func tabsSessionsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := state.Open(cfg.State.Backend, cfg.State.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	db, ok := store.(*state.SQLiteStore)
	if !ok {
		return fmt.Errorf("sessions are only kept by the %s backend", state.BackendSQLite)
	}
	ids, err := db.Sessions(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}
