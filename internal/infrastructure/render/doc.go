// Package render turns a billing record into camera-ready, multi-page
// HTML markup and hands it to a PDF converter.
//
// The pipeline is a one-way data flow:
//
//	record -> tax breakdown -> formatted strings -> row fragments
//	       -> page buckets -> composed document -> PDF bytes
//
// Every stage is pure and side-effect free; renders of independent
// records may run in parallel with no shared mutable state. The only
// blocking call is the final hand-off to the converter, which runs
// under a bounded timeout.
package render
