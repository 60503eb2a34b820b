// Package viz renders sweep results for the terminal.
//
//   - [Canvas]: braille dot grid addressed in data coordinates
//   - [Diagram]: bifurcation diagram with stable, unstable and event layers
//   - [CountPlot], [SummaryTable], [EventTable]: textual summaries
//
// Colors follow the current [Theme]; see [SetTheme].
package viz
