// Package dynamo provides the core primitives for batched vehicle simulation.
//
// The central type is [Batch], a dense row-major matrix holding one row per
// vehicle. All simulation operations are elementwise across rows: vehicles in
// a batch never interact, so any row ordering and any chunked parallel
// traversal produce identical results.
//
// # Thread Safety
//
// A Batch is not safe for concurrent mutation. The simulation step functions
// treat their inputs as immutable and return freshly allocated output batches,
// so callers may share input batches across goroutines freely.
package dynamo
