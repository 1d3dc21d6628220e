package ocrrun

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Engine status codes as emitted by PaddleOCR-json v1.2. These are
// engine-version conventions, not protocol invariants — override the
// success code with WithSuccessCode when targeting a different build.
const (
	// CodeOK is the success code: data holds the recognition array.
	CodeOK = 100

	// CodeNoText is the engine's "image contains no text" code.
	CodeNoText = 101
)

// RawResponse is one decoded wire line: the engine's numeric status
// code plus its payload with the shape untouched. Data is nil when the
// response carried no data field.
type RawResponse struct {
	Code int
	Data json.RawMessage
}

// Point is one corner of a recognition box, in pixel coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region is one recognized text region.
type Region struct {
	// Text is the recognized text.
	Text string `json:"text"`

	// Box is the bounding quadrilateral, clockwise from top-left.
	Box [4]Point `json:"box"`

	// Score is the recognition confidence in [0, 1].
	Score float64 `json:"score"`
}

// Result is the structured outcome of one request.
//
// Ok distinguishes engine-reported failures (no text, unreadable
// image) from successes. An engine-reported failure is an ordinary
// Result, not an error: the session remains usable.
type Result struct {
	// Ok reports whether the engine returned its success code.
	Ok bool

	// Code is the engine's status code, success or not.
	Code int

	// Message is the engine's human-readable message when Ok is false
	// and the payload was a string.
	Message string

	// Regions are the recognized text regions, in engine order, when
	// Ok is true.
	Regions []Region
}

// Parse derives a structured Result, treating successCode as success.
// Malformed entries inside the recognition array degrade to zero
// values rather than failing the whole response — the engine already
// vouched for the payload with its success code.
func (r RawResponse) Parse(successCode int) Result {
	res := Result{Code: r.Code}
	data := gjson.ParseBytes(r.Data)

	if r.Code != successCode {
		if data.Type == gjson.String {
			res.Message = data.String()
		}
		return res
	}

	res.Ok = true
	if !data.IsArray() {
		return res
	}
	data.ForEach(func(_, entry gjson.Result) bool {
		res.Regions = append(res.Regions, parseRegion(entry))
		return true
	})
	return res
}

func parseRegion(entry gjson.Result) Region {
	reg := Region{
		Text:  entry.Get("text").String(),
		Score: entry.Get("score").Float(),
	}
	for i, pt := range entry.Get("box").Array() {
		if i >= len(reg.Box) {
			break
		}
		coords := pt.Array()
		if len(coords) >= 2 {
			reg.Box[i] = Point{X: int(coords[0].Int()), Y: int(coords[1].Int())}
		}
	}
	return reg
}

// Text returns all recognized region text joined with newlines, in
// engine order (top-to-bottom reading order for PaddleOCR models).
func (res Result) Text() string {
	parts := make([]string, len(res.Regions))
	for i, reg := range res.Regions {
		parts[i] = reg.Text
	}
	return strings.Join(parts, "\n")
}
