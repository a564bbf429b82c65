// Package pipeline builds report documents by running analysis steps in
// sequence.
//
// Each step reads the dataset and the filtered persons carried by a
// report.Document and fills one section of it. A Pipeline runs the steps
// in order, records which ran and which failed, and honors context
// cancellation between steps. BatchProcessor runs one pipeline per dataset
// with bounded concurrency using errgroup.
package pipeline
