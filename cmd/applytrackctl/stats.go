package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	userstore "github.com/dalemusser/applytrack/internal/app/store/users"
	"github.com/dalemusser/applytrack/internal/app/system/appstats"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

type statsReport struct {
	Email   string           `json:"email"`
	Summary appstats.Summary `json:"summary"`
	Skipped int              `json:"skipped"`
}

func newStatsCmd(g *globalOpts) *cobra.Command {
	var (
		email  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print status counts and company-type success rates for one user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := g.logger()
			defer func() { _ = log.Sync() }()

			db, closeDB, err := g.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := timeouts.WithTimeout(cmd.Context(), timeouts.Medium(), log, "stats")
			defer cancel()

			u, err := userstore.New(db).GetByEmail(ctx, email)
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("no user with email %q", email)
			}
			if err != nil {
				return err
			}

			res, err := applicationstore.New(db, log).ListByOwner(ctx, u.ID, applicationstore.ListOptions{})
			if err != nil {
				return err
			}

			rep := statsReport{Email: u.Email, Summary: appstats.Summarize(res.Items), Skipped: res.Skipped}
			rep.Summary.Groups = appstats.SortGroups(rep.Summary.Groups)
			if asJSON {
				return writeStatsJSON(cmd.OutOrStdout(), rep)
			}
			return writeStatsText(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func writeStatsJSON(w io.Writer, rep statsReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeStatsText(w io.Writer, rep statsReport) error {
	c := rep.Summary.Counts
	fmt.Fprintf(w, "%s\n", rep.Email)
	fmt.Fprintf(w, "  total %d, in progress %d, accepted %d, rejected %d, success rate %.1f%%\n",
		c.Total, c.InProgress, c.Accepted, c.Rejected, rep.Summary.SuccessRate)
	if rep.Skipped > 0 {
		fmt.Fprintf(w, "  %d unreadable record(s) skipped\n", rep.Skipped)
	}
	if len(rep.Summary.Groups) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY TYPE\tTOTAL\tACCEPTED\tREJECTED\tIN PROGRESS\tSUCCESS")
	for _, g := range rep.Summary.Groups {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f%%\n",
			g.CompanyType, g.Total, g.Accepted, g.Rejected, g.InProgress, g.SuccessRate)
	}
	return tw.Flush()
}
