// Package scaffold defines the scaffold data model and on-disk store.
//
// A scaffold is an LLM-generated Python program implementing the
// process_input entry point. Every scaffold carries a provenance record
// (creation time, scaffolder model, parent scaffold, iteration, the exact
// prompt and response that produced it). Lineage is a flat append-only
// store keyed by scaffold id; parents are referenced by id, never by
// pointer, and a parent's record is never modified when children are
// created.
package scaffold
