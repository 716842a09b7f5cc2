// Package files provides file system operations and discovery utilities
// over the sustainability data directories.
//
// Discovery finds workbook and CSV inputs: yearly indicator workbooks,
// per-company workbooks, and the mixed data files the batch cleaner
// walks. Manager provides basic read/write/delete operations resolved
// against the configured data directories so callers never assemble
// paths by hand.
package files
