// Package index holds the hash-store backends and the lifecycle they share.
//
// Three backends implement hashstore.Store:
//
//   - bruteforce: exact, scans the whole population in parallel
//   - gpu: exact over the deduplicated population, filters on a device
//   - mih: bounded recall, retrieves K candidates from a multi-index hash
//
// # Backend Selection
//
//   - bruteforce: small to medium populations, duplicates must be reported
//   - gpu: large populations with selective thresholds
//   - mih: very large populations where K bounds the expected result size
//
// Backends differ on duplicates: gpu reports one match per distinct code,
// the others one match per stored entry.
package index
