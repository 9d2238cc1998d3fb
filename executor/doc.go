// Package executor evaluates one scaffold against a batch of examples.
//
// Each example runs in its own sandbox invocation; a bounded worker pool
// keeps container pressure predictable. A failed example contributes a
// score of zero instead of aborting the batch, and the first example's
// output and execution log are retained so evolution feedback stays
// bounded in size.
package executor
