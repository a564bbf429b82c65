// Package main provides the entry point for the svustats CLI.
//
// svustats computes descriptive statistics over curated datasets of the
// people wrongly accused in crime drama episodes: severity distributions,
// apology rates, physical harm and arbitrary cross-tabulations.
//
// Usage:
//
//	svustats report
//	svustats crosstab police_conduct_threat police_apology
//	svustats --dataset lo harm
//
// See --help for all available options.
package main

func main() {
	Execute()
}
