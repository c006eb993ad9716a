package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockduel/blockduel-go/internal/ai"
	"github.com/blockduel/blockduel-go/internal/factory"
	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/runner"
)

var (
	flagTierA    int
	flagTierB    int
	flagMaxTicks int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless AI-vs-AI match",
	Long: `Play a full match between two AI opponents without timers or a server,
printing the outcome. Useful for tuning AI tiers and checking that the
lock-event protocol keeps both boards consistent.

Examples:
  blockduel simulate
  blockduel simulate --tier-a 8 --tier-b 3`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagTierA, "tier-a", 4, "AI tier for side A (1-8)")
	simulateCmd.Flags().IntVar(&flagTierB, "tier-b", 4, "AI tier for side B (1-8)")
	simulateCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", 200000, "Tick budget before declaring a draw")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	app, err := factory.New(factory.Config{})
	if err != nil {
		return err
	}

	m, err := app.MatchController.Create(ctx, "side-a")
	if err != nil {
		return err
	}
	if _, err := app.MatchController.Join(ctx, m.Code, "side-b"); err != nil {
		return err
	}
	if _, err := app.MatchController.SetReady(ctx, m.ID, "side-a"); err != nil {
		return err
	}
	m, err = app.MatchController.SetReady(ctx, m.ID, "side-b")
	if err != nil {
		return err
	}

	fmt.Printf("match %s: tier %d vs tier %d, seed %d\n", m.ID, flagTierA, flagTierB, m.Seed)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := runner.Config{
		MatchID:          m.ID,
		Seed:             m.Seed,
		SilenceThreshold: time.Hour, // no liveness in a single-process duel
		GraceWindow:      time.Hour,
	}

	cfgA := base
	cfgA.SelfID, cfgA.PeerID = "side-a", "side-b"
	cfgA.Difficulty = ai.Tier(flagTierA)
	cfgB := base
	cfgB.SelfID, cfgB.PeerID = "side-b", "side-a"
	cfgB.Difficulty = ai.Tier(flagTierB)

	now := time.Now().UnixNano()
	a := runner.New(cfgA, app.Transport, app.MatchController, app.SnapshotService, app.Clock, rand.New(rand.NewPCG(uint64(now), 1)), logger)
	b := runner.New(cfgB, app.Transport, app.MatchController, app.SnapshotService, app.Clock, rand.New(rand.NewPCG(uint64(now), 2)), logger)

	eventsA, cancelA, err := app.Transport.Subscribe(ctx, m.ID)
	if err != nil {
		return err
	}
	defer cancelA()
	eventsB, cancelB, err := app.Transport.Subscribe(ctx, m.ID)
	if err != nil {
		return err
	}
	defer cancelB()

	for tick := 0; tick < flagMaxTicks && !(a.Finished() || b.Finished()); tick++ {
		if err := a.ThinkTick(ctx); err != nil {
			return err
		}
		if err := b.ThinkTick(ctx); err != nil {
			return err
		}
		if err := drain(ctx, a, eventsA); err != nil {
			return err
		}
		if err := drain(ctx, b, eventsB); err != nil {
			return err
		}
	}

	m, err = app.MatchController.Get(ctx, m.ID)
	if err != nil {
		return err
	}
	if m.Status != model.MatchStatusEnded {
		fmt.Fprintln(os.Stderr, "tick budget exhausted without a winner")
		return nil
	}

	fmt.Printf("winner: %s (%s)\n", m.WinnerID, m.EndReason)
	fmt.Printf("side-a: score %d, lines %d\n", a.State().Score, a.State().TotalLines)
	fmt.Printf("side-b: score %d, lines %d\n", b.State().Score, b.State().TotalLines)
	return nil
}

func drain(ctx context.Context, r *runner.Runner, events <-chan []byte) error {
	for {
		select {
		case data := <-events:
			if err := r.HandleEnvelope(ctx, data); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
