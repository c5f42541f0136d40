package core

import "errors"

// User-visible constants.
const (
	// SentinelNoQRCode replaces the scan result when an uploaded image holds no QR code.
	SentinelNoQRCode = "No QR code found in image."

	// DownloadFilename is the fixed name of the downloaded QR image.
	DownloadFilename = "qrcode.png"
)

// Sentinel errors.
var (
	// ErrOutOfRange is returned when a row or column index is outside the table.
	ErrOutOfRange = errors.New("index out of range")

	// ErrRaggedTable is returned by Table.Validate when a row length differs from the column count.
	ErrRaggedTable = errors.New("row length does not match column count")

	// ErrNotTabular is returned when a payload is not {columns, rows} JSON.
	ErrNotTabular = errors.New("payload is not a table")

	// ErrNoQRCode is returned by decoders when an image holds no readable QR code.
	ErrNoQRCode = errors.New("no QR code found")

	// ErrEmptyPayload is returned by encoders asked to render an empty payload.
	ErrEmptyPayload = errors.New("empty payload")
)
