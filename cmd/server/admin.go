package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtding233/summon-backend/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		return st.Close()
	},
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace grades, name pools and the XP curve from a seed file",
	RunE: func(cmd *cobra.Command, args []string) error {
		sd, err := store.LoadSeed(seedFile)
		if err != nil {
			return err
		}
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		rep, err := st.ApplySeed(cmd.Context(), sd)
		if err != nil {
			return fmt.Errorf("applying seed: %w", err)
		}
		log.Info("seed applied",
			"grades", rep.Grades,
			"first_names", rep.FirstNames,
			"last_names", rep.LastNames,
			"levels", rep.Levels)

		counts, err := st.NameCounts(cmd.Context())
		if err != nil {
			return err
		}
		for nat, c := range counts {
			if c[0] == 0 || c[1] == 0 {
				log.Warn("name pool incomplete, summons will use fallback names", "nationality", nat,
					"first_names", c[0], "last_names", c[1])
			}
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "configs/seed/reference.yaml", "seed YAML file")
}
