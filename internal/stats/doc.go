// Package stats holds the dashboard rollups: severity distribution, season
// trend, severity averages per category, apology rates per conduct type,
// the physical harm classifier and the overall summary.
//
// Every rate and average is guarded against empty denominators and is
// zero in that case; RateText renders such a rate as "N/A".
package stats
