package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/runebridge/internal/config"
	"github.com/dshills/runebridge/internal/journal"
)

func journalCmd() *cobra.Command {
	var path, configPath string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded boundary calls",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "Journal database (defaults to journal.path from the config)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	open := func(cmd *cobra.Command) (*journal.Journal, error) {
		p := path
		if p == "" {
			cfg, err := config.Load(config.Options{Path: configPath})
			if err != nil {
				return nil, err
			}
			p = cfg.Journal.Path
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("journal %s: %w", p, err)
		}
		return journal.Open(cmd.Context(), p, journal.Options{ReadOnly: true})
	}

	cmd.AddCommand(journalSessionsCmd(open))
	cmd.AddCommand(journalCallsCmd(open))
	return cmd
}

type journalOpener func(cmd *cobra.Command) (*journal.Journal, error)

func journalSessionsCmd(open journalOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := open(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			sessions, err := j.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(os.Stdout, "No sessions recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tSTARTED\tCALLS")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%d\n", s.ID, s.StartedAt.Local().Format(time.DateTime), s.Calls)
			}
			return w.Flush()
		},
	}
}

func journalCallsCmd(open journalOpener) *cobra.Command {
	var q journal.Query
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List recorded calls, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch q.Direction {
			case "", "in", "out":
			default:
				return fmt.Errorf("invalid direction %q (must be in or out)", q.Direction)
			}

			j, err := open(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			calls, err := j.Calls(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(calls) == 0 {
				fmt.Fprintln(os.Stdout, "No calls found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SEQ\tTIME\tDIR\tCALL\tARGS")
			for _, c := range calls {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.Seq, c.Time.Local().Format("15:04:05.000"), c.Direction, c.Name, c.Args)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&q.SessionID, "session", "", "Only calls from this session")
	cmd.Flags().StringVar(&q.Name, "name", "", "Only calls to this entry point")
	cmd.Flags().StringVar(&q.Direction, "direction", "", "Only in or out calls")
	cmd.Flags().IntVar(&q.Limit, "limit", 100, "Most recent calls to show (0 for all)")
	return cmd
}
