// Package hashstore defines the contract shared by every hash-store backend:
// the code constraint, the result model with its ordering rules, load state
// and the textual loader used to populate a store.
//
// # Ordering
//
// Matches are ordered by ascending distance, ties broken by ascending code.
// Batch results are ordered by ascending query code, never by submission
// order. Repeated queries keep their relative order.
//
// # Lifecycle
//
// A store starts Unloaded and becomes Loaded after one successful Load.
// Queries against an Unloaded store search an empty population.
package hashstore
