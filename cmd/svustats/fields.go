package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/model"
)

// NewFieldsCmd creates the fields command.
func NewFieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields [field]",
		Short: "List fields and their code definitions",
		Long: `Fields lists the coded fields of the dataset together with the value an
empty cell counts as. With a field name it prints every code of that
field with its display label and description.

--label prints the display label of a single code. Without a field name
the code is looked up in every field that has definitions, in a fixed
order, which suits codes copied from a source that does not name the field.

Examples:
  svustats fields
  svustats fields police_conduct_threat
  svustats fields --label formal
  svustats fields police_apology --label none
  svustats --dataset lo fields prosecutorial_conduct -f markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFieldsCmd,
	}
	addOutputFlag(cmd)
	cmd.Flags().String("label", "", "Print the display label of this code")
	return cmd
}

// fieldInfo describes one field of a variant.
type fieldInfo struct {
	Name    string `json:"name"`
	Default string `json:"default"`
	Codes   int    `json:"codes"`
}

// codeLabel is the JSON shape of a --label lookup.
type codeLabel struct {
	Field string `json:"field,omitempty"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// fieldDefinitions is the JSON shape of a single field listing.
type fieldDefinitions struct {
	Field       string                  `json:"field"`
	Default     string                  `json:"default"`
	Definitions []definition.Definition `json:"definitions"`
}

// runFieldsCmd executes the fields command.
func runFieldsCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	code, err := cmd.Flags().GetString("label")
	if err != nil {
		return err
	}

	var l listing
	switch {
	case code != "" && len(args) == 0:
		l = labelListing(codeLabel{Code: code, Label: definition.FormatAny(code)})
	case len(args) == 0:
		l = fieldsListing(ds)
	default:
		f, err := requireField(ds, args[0])
		if err != nil {
			return err
		}
		if code != "" {
			l = labelListing(codeLabel{Field: f.String(), Code: code, Label: definition.Format(f, code)})
		} else {
			l = definitionsListing(ds, f)
		}
	}

	out, format, err := a.openOutput(cmd)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := writeListings(out, format, l); err != nil {
		return err
	}
	return out.Close()
}

func labelListing(c codeLabel) listing {
	field := c.Field
	if field == "" {
		field = "any"
	}
	return listing{
		Title:  "Label",
		Header: []string{"Field", "Code", "Label"},
		Rows:   [][]string{{field, c.Code, c.Label}},
		Value:  c,
	}
}

// fieldDefault is the code an empty value of f counts as.
func fieldDefault(f model.Field) string {
	return model.Extract(&model.Person{}, f)
}

func fieldsListing(ds *model.Dataset) listing {
	fields := ds.Variant.Fields()
	infos := make([]fieldInfo, 0, len(fields))
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		info := fieldInfo{Name: f.String(), Default: fieldDefault(f), Codes: len(definition.Codes(f))}
		infos = append(infos, info)
		codes := strconv.Itoa(info.Codes)
		if f.IsSeason() {
			codes = "numeric"
		}
		rows = append(rows, []string{info.Name, info.Default, codes})
	}
	return listing{
		Title:  fmt.Sprintf("Fields of %s (%s)", ds.Name, ds.Variant),
		Header: []string{"Field", "Empty Means", "Codes"},
		Rows:   rows,
		Value:  infos,
	}
}

func definitionsListing(ds *model.Dataset, f model.Field) listing {
	defs := definition.Definitions(f)
	if f.IsSeason() {
		for _, n := range ds.Seasons() {
			code := strconv.Itoa(n)
			defs = append(defs, definition.Definition{Code: code, Label: definition.Format(f, code)})
		}
	}

	withColor := f == model.FieldSeverity
	header := []string{"Code", "Label", "Description"}
	if withColor {
		header = append(header, "Color")
	}
	rows := make([][]string, 0, len(defs))
	for _, d := range defs {
		row := []string{d.Code, d.Label, d.Description}
		if withColor {
			row = append(row, d.Color)
		}
		rows = append(rows, row)
	}
	return listing{
		Title:  "Codes of " + f.String(),
		Header: header,
		Rows:   rows,
		Notes:  []string{fmt.Sprintf("An empty %s counts as %q.", f, fieldDefault(f))},
		Value:  fieldDefinitions{Field: f.String(), Default: fieldDefault(f), Definitions: defs},
	}
}
