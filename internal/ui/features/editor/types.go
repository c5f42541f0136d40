package editor

import "errors"

var errMissingMode = errors.New("missing mode signal")

// Export file names and content types.
const (
	csvFilename  = "table.csv"
	xlsxFilename = "table.xlsx"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
