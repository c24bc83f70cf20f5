package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xtding233/summon-backend/internal/game"
	"github.com/xtding233/summon-backend/internal/summon"
)

var (
	simLevel  int
	simTrials int
	simTarget string
	simSeed   uint64
)

func loadBalance() (*summon.Config, error) {
	c, _, err := game.NewLoader(cfg.Balance.Dir).LoadConfig(cfg.Balance.Season)
	if err != nil {
		return nil, fmt.Errorf("loading balance: %w", err)
	}
	return c, nil
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Monte Carlo the rarity and grade draw offline",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadBalance()
		if err != nil {
			return err
		}
		rng := summon.DefaultRNG()
		if simSeed != 0 {
			rng = summon.NewSeededRNG(simSeed)
		}

		dist, err := summon.SimulateRarities(c, simLevel, simTrials, rng)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "level %d, %d trials, %.2f%% capped by grade\n\n", simLevel, dist.Trials, dist.Capped*100)
		fmt.Fprintln(w, "RARITY\tDRAWN\tAFTER CAP")
		for _, wt := range c.BaseProbabilities {
			r := summon.Rarity(wt.Key)
			fmt.Fprintf(w, "%s\t%.3f%%\t%.3f%%\n", r, dist.Drawn[r]*100, dist.Rarities[r]*100)
		}
		fmt.Fprintln(w, "\nGRADE\tSHARE")
		for _, wt := range c.GradeProbabilities {
			fmt.Fprintf(w, "%s\t%.3f%%\n", wt.Key, dist.Grades[wt.Key]*100)
		}

		if simTarget != "" {
			target := summon.Rarity(strings.ToUpper(simTarget))
			st, err := summon.RunMonteCarlo(cmd.Context(), c, simLevel, target, simTrials, 0, rng)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\nsummons to reach %s: mean=%.2f sd=%.2f p50=%.0f p90=%.0f p99=%.0f\n",
				target, st.Mean, st.StdDev, st.P50, st.P90, st.P99)
		}
		return w.Flush()
	},
}

var oddsCmd = &cobra.Command{
	Use:   "odds",
	Short: "Print the adjusted draw probabilities for a level",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadBalance()
		if err != nil {
			return err
		}
		odds := summon.ComputeOdds(c, simLevel)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "level %d\n\nRARITY\tWEIGHT\tCHANCE\n", odds.Level)
		for _, ch := range odds.Rarities {
			fmt.Fprintf(w, "%s\t%.3f\t%.3f%%\n", ch.Key, ch.Weight, ch.Probability*100)
		}
		fmt.Fprintln(w, "\nGRADE\tWEIGHT\tCHANCE\tCAP")
		for _, ch := range odds.Grades {
			fmt.Fprintf(w, "%s\t%.3f\t%.3f%%\t%s\n", ch.Key, ch.Weight, ch.Probability*100, odds.Caps[ch.Key])
		}
		return w.Flush()
	},
}

func init() {
	for _, c := range []*cobra.Command{simulateCmd, oddsCmd} {
		c.Flags().IntVarP(&simLevel, "level", "l", 1, "character level")
	}
	simulateCmd.Flags().IntVarP(&simTrials, "trials", "n", 100_000, "number of simulated summons")
	simulateCmd.Flags().StringVarP(&simTarget, "target", "t", "", "also measure summons needed to reach this rarity")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 0, "fixed RNG seed (0 = crypto RNG)")
}
