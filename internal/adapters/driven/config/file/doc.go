// Package file stores lis-search settings in ~/.lis-search/config.toml.
//
// Keys are flattened with dots ("api.endpoint", "search.genes.required")
// in memory and written back as nested TOML tables, so the file stays
// editable by hand.
package file
