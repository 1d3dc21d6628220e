package ocrrun

import "errors"

// Request is a single OCR request: an image source plus free-form
// per-call overrides merged into the wire line at top level.
//
// ImagePath and ImageData are mutually exclusive. When both are empty
// the request is a clipboard request: the encoded line carries no
// image field and the engine reads the system clipboard itself.
//
// Request is a transient value — built per call, consumed by Send,
// never retained.
type Request struct {
	// ImagePath is a filesystem path sent verbatim. The engine process
	// opens it, so it must be readable by the engine, not necessarily
	// by this process.
	ImagePath string

	// ImageData is the raw image bytes of any format the engine
	// decodes, sent base64-encoded inline.
	ImageData []byte

	// Options are per-call engine overrides merged into the request
	// line at top level (e.g. an alternate model path). Values may be
	// any JSON-encodable type.
	Options map[string]any
}

var errBothImageSources = errors.New("ocrrun: request sets both ImagePath and ImageData")

// validate enforces the one-image-source invariant.
func (r Request) validate() error {
	if r.ImagePath != "" && len(r.ImageData) > 0 {
		return errBothImageSources
	}
	return nil
}
