// Package core defines the shared language of qrsheet.
//
// This package contains:
//   - Content types (Mode, Table)
//   - Fixed user-visible constants (sentinel strings, download filename)
//   - Sentinel errors shared by the editor, QR collaborators and the scan interpreter
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
