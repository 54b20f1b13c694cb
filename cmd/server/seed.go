package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	scheduleStore "techday/internal/adapters/storage/schedule"
	speakerStore "techday/internal/adapters/storage/speaker"
	sponsorStore "techday/internal/adapters/storage/sponsor"
	"techday/internal/application/orchestrators"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load speakers, sessions and sponsors from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			doc, err := orchestrators.ParseSeedContent(data)
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := orchestrators.ExecuteSeedContent(cmd.Context(), doc, orchestrators.SeedContentDeps{
				SponsorStore:  sponsorStore.NewSQLiteStore(db),
				SpeakerStore:  speakerStore.NewSQLiteStore(db),
				ScheduleStore: scheduleStore.NewSQLiteStore(db),
				Now:           time.Now,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d speakers, %d sessions, %d sponsors\n", res.Speakers, res.Sessions, res.Sponsors)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed YAML file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
