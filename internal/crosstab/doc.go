// Package crosstab computes dense two-way frequency tables over coded
// person fields.
//
// A Table has one Row per distinct X value and, in every row, one count
// per distinct Y value seen anywhere in the input. Missing combinations are
// explicit zeros, so each row can be drawn as a stacked bar without
// consulting the others.
//
// Counting always happens on raw codes. When Options.Formatted is set the
// codes are replaced by labels from the definition package afterwards:
//
//	table, err := crosstab.CrossTabulate(ds.Persons,
//		model.FieldPoliceConductThreat, model.FieldPoliceApology,
//		crosstab.Options{Formatted: true})
package crosstab
