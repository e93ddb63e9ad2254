package main

// ConversionResult is the outcome of converting one MySQL statement.
// Exactly one of SQL and Err is set: SQL holds PostgreSQL-executable text
// (possibly several statements and/or advisory comment lines), Err holds the
// failure message for that statement only.
type ConversionResult struct {
	SQL string
	Err string
}

// IsError reports whether the statement failed to convert.
func (r ConversionResult) IsError() bool {
	return r.Err != ""
}
