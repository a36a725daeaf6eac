// Package index provides hash indexes over DataFrame columns for
// equality lookups. Indexes are keyed by val.Value.Hash, so only String
// and Usize columns qualify; the query engine falls back to a scan for
// everything else.
package index
