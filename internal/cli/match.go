package cli

import (
	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match operations",
		Long:  `Create, join and manage matches.`,
	}

	cmd.AddCommand(newMatchCreateCmd())
	cmd.AddCommand(newMatchGetCmd())
	cmd.AddCommand(newMatchJoinCmd())
	cmd.AddCommand(newMatchReadyCmd())
	cmd.AddCommand(newMatchForfeitCmd())
	cmd.AddCommand(newMatchSnapshotCmd())

	return cmd
}

func newMatchCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new match",
		Long:  `Create a match and print its join code for the opponent.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var match Match
			if err := client.Post("/api/v1/matches", nil, &match); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(match)
			return nil
		},
	}
}

func newMatchGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <match-id>",
		Short: "Show a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var match Match
			if err := client.Get("/api/v1/matches/"+args[0], &match); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(match)
			return nil
		},
	}
}

func newMatchJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a match by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"code": args[0]}

			var match Match
			if err := client.Post("/api/v1/matches/join", body, &match); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(match)
			return nil
		},
	}
}

func newMatchReadyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready <match-id>",
		Short: "Mark yourself ready",
		Long:  `Mark yourself ready. When both sides are ready the match starts.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var match Match
			if err := client.Post("/api/v1/matches/"+args[0]+"/ready", nil, &match); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(match)
			return nil
		},
	}
}

func newMatchForfeitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forfeit <match-id>",
		Short: "Forfeit a match",
		Long:  `Concede the match; the opponent wins by forfeit.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var match Match
			if err := client.Post("/api/v1/matches/"+args[0]+"/finish", map[string]string{}, &match); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(match)
			return nil
		},
	}
}

func newMatchSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <match-id>",
		Short: "Show the latest recovery snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap Snapshot
			if err := client.Get("/api/v1/matches/"+args[0]+"/snapshot", &snap); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(snap)
			return nil
		},
	}
}
