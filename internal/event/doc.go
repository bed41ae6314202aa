// Package event turns event announcement issues into typed records.
//
// An announcement issue body is a sequence of sections, each introduced by a
// "### " heading followed by a blank line and a single paragraph value:
//
//	### date
//
//	2024-05-07
//
//	### time
//
//	18:30
//
// Parse validates the sections against a fixed schema and combines the date
// and time into a single instant in the configured time zone. Sort orders
// records by that instant.
package event
