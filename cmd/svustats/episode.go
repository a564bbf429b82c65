package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/log"
	"github.com/Tyorden/svustats/internal/model"
)

// NewEpisodeCmd creates the episode command.
func NewEpisodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "episode <custom-id>",
		Short: "Show one episode and the persons accused in it",
		Long: `Episode looks up an episode by its custom id (for example S03E07) and
prints its flags and every person recorded for it, with labelled codes.

Examples:
  svustats episode S01E02
  svustats --dataset lo episode LO02E05 -f json`,
		Args: cobra.ExactArgs(1),
		RunE: runEpisodeCmd,
	}
	addOutputFlag(cmd)
	cmd.Flags().Bool("raw", false, "Print raw codes instead of display labels")
	return cmd
}

// episodeDetail is the JSON shape of the episode command.
type episodeDetail struct {
	Episode model.Episode  `json:"episode"`
	Persons []model.Person `json:"persons"`
}

// runEpisodeCmd executes the episode command.
func runEpisodeCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return err
	}
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	ep, ok := ds.Episode(args[0])
	if !ok {
		return fmt.Errorf("%w: %s in %s", model.ErrEpisodeNotFound, args[0], ds.Name)
	}
	detail := episodeDetail{Episode: ep, Persons: ds.PersonsIn(ep.CustomID)}

	out, format, err := a.openOutput(cmd)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := writeListings(out, format, episodeListings(ds, detail, raw)...); err != nil {
		return err
	}
	return out.Close()
}

// personFields are the columns of the person grid, in display order.
var personFields = []model.Field{
	model.FieldRoleInPlot,
	model.FieldAccusedOf,
	model.FieldAccusationOrigin,
	model.FieldInnocenceStatus,
	model.FieldExposureChannel,
	model.FieldConsequenceCategory,
	model.FieldSeverity,
	model.FieldPoliceConductThreat,
	model.FieldPoliceApology,
	model.FieldProsecutorialConduct,
	model.FieldProsecutorialApology,
}

func episodeListings(ds *model.Dataset, d episodeDetail, raw bool) []listing {
	ep := d.Episode
	info := listing{
		Title:  fmt.Sprintf("%s: %s", ep.CustomID, ep.Title),
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Season", ep.Season},
			{"Episode", ep.EpisodeNumber},
			{"False suspect", definition.FlagLabel(ep.HasFalseSuspect)},
			{"Public exposure", definition.FlagLabel(ep.HasPublicExposure)},
			{"Needs deep review", definition.FlagLabel(ep.NeedsDeepReview)},
		},
		Value: d,
	}
	if ep.Summary != "" {
		info.Notes = append(info.Notes, log.Shorten(ep.Summary, 400))
	}

	var fields []model.Field
	for _, f := range personFields {
		if ds.Variant.Supports(f) {
			fields = append(fields, f)
		}
	}
	header := []string{"Person"}
	for _, f := range fields {
		header = append(header, f.String())
	}
	persons := listing{
		Title:  fmt.Sprintf("Persons (%d)", len(d.Persons)),
		Header: header,
	}
	for _, p := range d.Persons {
		name := p.Name
		if name == "" {
			name = p.PersonID
		}
		row := []string{name}
		for _, f := range fields {
			v := p.Value(f)
			if !raw {
				v = definition.Format(f, v)
			}
			row = append(row, v)
		}
		persons.Rows = append(persons.Rows, row)
		if p.Quote != "" {
			persons.Notes = append(persons.Notes, fmt.Sprintf("%s: %q", name, log.Shorten(p.Quote, 200)))
		}
	}
	return []listing{info, persons}
}
