package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cl "omerta/internal/cli"
	"omerta/internal/config"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "omertactl",
		Short:        "Omerta operations client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "ops API base URL")

	root.AddCommand(
		newHealthCmd(&apiBase),
		newTurfsCmd(&apiBase),
		newHitsCmd(&apiBase),
		newLeaderboardCmd(&apiBase),
		newAccountCmd(&apiBase),
		newFamilyCmd(&apiBase),
		newSeedCmd(&apiBase),
		newSweepCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func callCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newHealthCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the ops API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			if _, err := newClient(apiBase).Health(ctx); err != nil {
				return err
			}
			printSuccess("API is up.")
			return nil
		},
	}
}

func newTurfsCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "turfs [name]",
		Short: "List turfs or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			client := newClient(apiBase)

			if len(args) == 1 {
				out, err := client.TurfDetail(ctx, args[0])
				if err != nil {
					return err
				}
				turf, err := decodeInto[turfView](out)
				if err != nil {
					return err
				}
				renderTurfDetail(turf)
				return nil
			}

			out, err := client.ListTurfs(ctx)
			if err != nil {
				return err
			}
			payload, err := decodeInto[turfsPayload](out)
			if err != nil {
				return err
			}
			renderTurfTable(payload.Turfs)
			return nil
		},
	}
	return cmd
}

func newHitsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "hits",
		Short: "List open hit contracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(apiBase).OpenHits(ctx)
			if err != nil {
				return err
			}
			payload, err := decodeInto[hitsPayload](out)
			if err != nil {
				return err
			}
			renderHits(payload.Contracts)
			return nil
		},
	}
}

func newLeaderboardCmd(apiBase *string) *cobra.Command {
	var limit int
	var families bool
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the richest players or families",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			client := newClient(apiBase)

			if families {
				out, err := client.FamilyLeaderboard(ctx, limit)
				if err != nil {
					return err
				}
				payload, err := decodeInto[familyBoardPayload](out)
				if err != nil {
					return err
				}
				renderFamilyBoard(payload.Leaderboard)
				return nil
			}

			out, err := client.PlayerLeaderboard(ctx, limit)
			if err != nil {
				return err
			}
			payload, err := decodeInto[playerBoardPayload](out)
			if err != nil {
				return err
			}
			renderPlayerBoard(payload.Leaderboard)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "rows to show")
	cmd.Flags().BoolVar(&families, "families", false, "rank families instead of players")
	return cmd
}

func newAccountCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "account <user-id>",
		Short: "Show one player account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(apiBase).Account(ctx, args[0])
			if err != nil {
				return err
			}
			acct, err := decodeInto[accountView](out)
			if err != nil {
				return err
			}
			renderAccount(acct)
			return nil
		},
	}
}

func newFamilyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "family <name>",
		Short: "Show a family and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(apiBase).Family(ctx, args[0])
			if err != nil {
				return err
			}
			payload, err := decodeInto[familyDetailPayload](out)
			if err != nil {
				return err
			}
			renderFamilyDetail(payload)
			return nil
		},
	}
}

func newSeedCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-turfs",
		Short: "Seed the default turf map",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			if _, err := newClient(apiBase).SeedTurfs(ctx); err != nil {
				return err
			}
			printSuccess("Turfs seeded.")
			return nil
		},
	}
}

func newSweepCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-income",
		Short: "Settle accrued turf income for every family",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(apiBase).SweepIncome(ctx)
			if err != nil {
				return err
			}
			report, err := decodeInto[sweepReport](out)
			if err != nil {
				return err
			}
			renderSweep(report)
			return nil
		},
	}
}
