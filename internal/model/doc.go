// Package model defines the record types shared by every svustats package.
//
// This package contains the following main types:
//   - Episode: one curated episode with its tri-state review flags
//   - Person: one accused person inside an episode, with the coded
//     categorical fields that the cross-tab engine and the rollups read
//   - Field: the closed set of categorical fields that can be tabulated
//   - Dataset: an immutable pair of episode and person collections for one
//     series variant
//
// Records are loaded once and never mutated. Every derived view (filters,
// cross-tabs, statistics) is recomputed from the same in-memory slices.
package model
