// Package wire implements the engine's newline-delimited JSON framing:
// one request object per line out, one response object per line back.
//
// Encoding uses sjson to build the line and merge free-form per-call
// overrides at the top level; decoding uses gjson so the payload can
// be handed through without committing to a shape.
package wire

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Wire field names recognized by the engine.
const (
	fieldImagePath   = "image_path"
	fieldImageBase64 = "image_base64"
	fieldCode        = "code"
	fieldData        = "data"
)

var errBothSources = errors.New("wire: both image path and image data set")

// Encode builds one request line. Exactly one of imagePath/imageData
// may be set; both empty produces a clipboard request carrying no
// image field. Overrides merge at the top level in sorted key order so
// output is deterministic. The returned line never contains a newline —
// framing is the transport's job.
func Encode(imagePath string, imageData []byte, overrides map[string]any) ([]byte, error) {
	if imagePath != "" && len(imageData) > 0 {
		return nil, errBothSources
	}

	line := []byte("{}")
	var err error
	switch {
	case imagePath != "":
		line, err = sjson.SetBytes(line, fieldImagePath, imagePath)
	case len(imageData) > 0:
		line, err = sjson.SetBytes(line, fieldImageBase64, base64.StdEncoding.EncodeToString(imageData))
	}
	if err != nil {
		return nil, fmt.Errorf("wire: set image field: %w", err)
	}

	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		line, err = sjson.SetBytes(line, escapeKey(key), overrides[key])
		if err != nil {
			return nil, fmt.Errorf("wire: set option %q: %w", key, err)
		}
	}

	if bytes.ContainsRune(line, '\n') {
		return nil, errors.New("wire: encoded request embeds a newline")
	}
	return line, nil
}

// Decode parses one response line into its status code and payload.
// Anything that is not a JSON object with a numeric code field is an
// error — the line is likely an engine diagnostic where a response was
// due, and the caller must treat the stream as desynchronized. A
// missing data field is tolerated (nil payload).
func Decode(line []byte) (int, json.RawMessage, error) {
	if !gjson.ValidBytes(line) {
		return 0, nil, fmt.Errorf("wire: response is not valid JSON: %s", snippet(line))
	}
	parsed := gjson.ParseBytes(line)
	if !parsed.IsObject() {
		return 0, nil, fmt.Errorf("wire: response is not a JSON object: %s", snippet(line))
	}
	code := parsed.Get(fieldCode)
	if !code.Exists() || code.Type != gjson.Number {
		return 0, nil, fmt.Errorf("wire: response lacks a numeric %q field: %s", fieldCode, snippet(line))
	}

	var data json.RawMessage
	if d := parsed.Get(fieldData); d.Exists() {
		data = json.RawMessage(d.Raw)
	}
	return int(code.Int()), data, nil
}

// escapeKey neutralizes sjson path syntax so override keys are treated
// as literal top-level field names.
func escapeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch r {
		case '.', ':', '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// snippet truncates a line for error messages.
func snippet(line []byte) string {
	const max = 120
	if len(line) <= max {
		return string(line)
	}
	return string(line[:max]) + "..."
}
