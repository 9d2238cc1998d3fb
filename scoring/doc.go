// Package scoring maps domain identifiers to scoring functions.
//
// A scoring function grades one scaffold output against an example's
// scoring data and returns a float in [0, 1]. The rest of the system
// depends only on the Func signature, never on domain internals.
//
// Built-in domains: "crosswords" (per-square grid scoring), "mcq" and its
// aliases "gpqa" and "human-preference" (answer-letter match), and
// "codeforces" (the output is a program, judged against held-out test
// cases in the sandbox).
package scoring
