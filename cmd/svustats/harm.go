package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/stats"
)

// NewHarmCmd creates the harm command.
func NewHarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harm",
		Short: "Break down physical harm to the accused",
		Long: `Harm classifies the consequence description of every person into one
physical harm class (murdered, suicide, vigilante, assaulted) and counts
each class. A description matching several classes counts once, for the
most serious one.

Examples:
  svustats harm
  svustats harm --persons
  svustats --dataset lo harm -f json`,
		Args: cobra.NoArgs,
		RunE: runHarmCmd,
	}
	addFilterFlags(cmd)
	addOutputFlag(cmd)
	cmd.Flags().Bool("persons", false, "List the persons in each class")
	return cmd
}

// runHarmCmd executes the harm command.
func runHarmCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	showPersons, err := cmd.Flags().GetBool("persons")
	if err != nil {
		return err
	}
	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	summary := stats.HarmBreakdown(filter.Apply(ds.Persons))

	out, format, err := a.openOutput(cmd)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := writeListings(out, format, harmListing(ds.Name, summary, showPersons)); err != nil {
		return err
	}
	return out.Close()
}

func harmListing(dataset string, s stats.HarmSummary, showPersons bool) listing {
	header := []string{"Harm", "Count", "Percent"}
	if showPersons {
		header = append(header, "Persons")
	}
	rows := make([][]string, 0, len(s.Classes))
	for _, c := range s.Classes {
		row := []string{
			c.Harm.String(),
			strconv.Itoa(c.Count),
			strconv.FormatFloat(c.Percent, 'f', 1, 64) + "%",
		}
		if showPersons {
			row = append(row, strings.Join(s.Persons[c.Harm], ", "))
		}
		rows = append(rows, row)
	}
	return listing{
		Title:  "Physical harm in " + dataset,
		Header: header,
		Rows:   rows,
		Notes: []string{fmt.Sprintf("%d of %d persons (%s) were physically harmed.",
			s.Harmed, s.Total, stats.RateText(s.Harmed, s.Total))},
		Value: s,
	}
}
