package dataset

import "errors"

// Sentinel errors for marksheet ingestion. Validation failures wrap one of
// these with column/row context, so callers should match with errors.Is.
var (
	ErrInvalidExtension     = errors.New("file must be in CSV or Excel format (.csv, .xlsx, .xlsm)")
	ErrCorruptedFile        = errors.New("the file appears to be corrupted or unreadable")
	ErrInvalidDataStructure = errors.New("the file structure is invalid")
	ErrUnknownColumn        = errors.New("column is not allowed")
	ErrDuplicateKey         = errors.New("duplicate values found in 'Roll No'")
	ErrNonNumeric           = errors.New("column must be numeric")
	ErrOutOfRange           = errors.New("column contains values outside the valid range (0-100)")
)

// ErrNotFound is returned by dataset stores for unknown or expired ids.
var ErrNotFound = errors.New("dataset not found or expired")
