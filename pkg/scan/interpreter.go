// Package scan interprets decoded QR payloads: it keeps the latest result,
// runs the camera session state machine and reinterprets {columns, rows}
// payloads as tables.
package scan

import (
	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// Source identifies where a decoded payload came from.
type Source int

// Decode sources.
const (
	SourceUpload Source = iota
	SourceCamera
)

// String returns the string representation of the source.
func (s Source) String() string {
	if s == SourceCamera {
		return "camera"
	}
	return "upload"
}

// Interpreter holds the latest scan result and the camera session.
type Interpreter struct {
	result  string
	session Session
}

// NewInterpreter creates an interpreter with no result and an idle session.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Result returns the latest scan result.
func (in *Interpreter) Result() string { return in.result }

// Session returns the camera session.
func (in *Interpreter) Session() *Session { return &in.session }

// OnDecoded overwrites the result. A camera decode also ends the session.
func (in *Interpreter) OnDecoded(text string, src Source) {
	in.result = text
	if src == SourceCamera {
		in.session.Stop()
	}
}

// OnCameraMatch applies a camera decode only while the session of the
// given generation is still scanning. It reports whether it was applied.
func (in *Interpreter) OnCameraMatch(generation uint64, text string) bool {
	if !in.session.Scanning() || in.session.Generation() != generation {
		return false
	}
	in.OnDecoded(text, SourceCamera)
	return true
}

// OnDecodeFailure replaces the result with the no-code sentinel.
// Only the upload path reports failures.
func (in *Interpreter) OnDecodeFailure() {
	in.result = core.SentinelNoQRCode
}

// View returns the render model of the current result.
func (in *Interpreter) View() View {
	return NewView(in.result)
}
