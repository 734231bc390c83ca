// Package review runs the four-stage code review pipeline.
//
// A Pipeline reads one source file, classifies its language by extension,
// and asks a model twice: once for bugs and once for optimization
// opportunities. Each call sends the code with every line prefixed by its
// number (see AnnotateLines) and expects a JSON object back. Responses are
// tolerant of markdown fences and a leading <think> block; anything that
// does not decode yields no findings instead of an error.
//
// Bugs below the confidence threshold (0.7 by default) are dropped. The
// survivors and the optimizations are folded into a Report by BuildReport,
// a pure function: the severity distribution always carries the critical,
// high, medium and low buckets, and the overall severity is the worst of
// those present.
//
// Stages are functions from State to State and run in a fixed order.
// Run always returns a report, even when the file cannot be read.
package review
