package ocrrun

import (
	"encoding/json"
	"testing"
)

func TestParse_Success(t *testing.T) {
	raw := RawResponse{
		Code: CodeOK,
		Data: json.RawMessage(`[
			{"text":"hello","box":[[12,5],[80,5],[80,30],[12,30]],"score":0.987},
			{"text":"world","box":[[12,40],[90,40],[90,66],[12,66]],"score":0.912}
		]`),
	}
	res := raw.Parse(CodeOK)
	if !res.Ok {
		t.Fatal("Ok = false, want true")
	}
	if res.Code != CodeOK {
		t.Errorf("Code = %d, want %d", res.Code, CodeOK)
	}
	if res.Message != "" {
		t.Errorf("Message = %q, want empty on success", res.Message)
	}
	if len(res.Regions) != 2 {
		t.Fatalf("len(Regions) = %d, want 2", len(res.Regions))
	}
	first := res.Regions[0]
	if first.Text != "hello" {
		t.Errorf("Regions[0].Text = %q, want hello", first.Text)
	}
	if first.Box[0] != (Point{X: 12, Y: 5}) || first.Box[2] != (Point{X: 80, Y: 30}) {
		t.Errorf("Regions[0].Box = %v", first.Box)
	}
	if first.Score != 0.987 {
		t.Errorf("Regions[0].Score = %v, want 0.987", first.Score)
	}
	if got := res.Text(); got != "hello\nworld" {
		t.Errorf("Text() = %q, want hello\\nworld", got)
	}
}

func TestParse_EngineFailure(t *testing.T) {
	raw := RawResponse{Code: CodeNoText, Data: json.RawMessage(`"No text found in image."`)}
	res := raw.Parse(CodeOK)
	if res.Ok {
		t.Fatal("Ok = true, want false")
	}
	if res.Code != CodeNoText {
		t.Errorf("Code = %d, want %d", res.Code, CodeNoText)
	}
	if res.Message != "No text found in image." {
		t.Errorf("Message = %q", res.Message)
	}
	if res.Regions != nil {
		t.Errorf("Regions = %v, want nil", res.Regions)
	}
}

func TestParse_FailureWithNonStringData(t *testing.T) {
	raw := RawResponse{Code: 200, Data: json.RawMessage(`{"detail":"path error"}`)}
	res := raw.Parse(CodeOK)
	if res.Ok || res.Message != "" {
		t.Errorf("got Ok=%v Message=%q, want failure with empty message", res.Ok, res.Message)
	}
}

func TestParse_FailureWithoutData(t *testing.T) {
	res := RawResponse{Code: 300}.Parse(CodeOK)
	if res.Ok || res.Code != 300 || res.Message != "" {
		t.Errorf("got %+v, want bare failure with code 300", res)
	}
}

func TestParse_SuccessWithoutArray(t *testing.T) {
	// Engine said success but the payload is not a recognition array.
	// The result is still Ok with no regions.
	res := RawResponse{Code: CodeOK, Data: json.RawMessage(`"unexpected"`)}.Parse(CodeOK)
	if !res.Ok {
		t.Fatal("Ok = false, want true")
	}
	if len(res.Regions) != 0 {
		t.Errorf("Regions = %v, want empty", res.Regions)
	}
}

func TestParse_MalformedEntriesDegrade(t *testing.T) {
	raw := RawResponse{
		Code: CodeOK,
		Data: json.RawMessage(`[
			{"text":"good","box":[[1,2],[3,4],[5,6],[7,8]],"score":0.5},
			{"box":"nonsense"},
			{"text":"short-box","box":[[9,9]],"score":1},
			{"text":"bare-coords","box":[[1],[2,3,4],[],[5,6]],"score":0.1}
		]`),
	}
	res := raw.Parse(CodeOK)
	if !res.Ok || len(res.Regions) != 4 {
		t.Fatalf("got Ok=%v len=%d, want Ok=true len=4", res.Ok, len(res.Regions))
	}
	if res.Regions[1].Text != "" || res.Regions[1].Score != 0 {
		t.Errorf("Regions[1] = %+v, want zero values", res.Regions[1])
	}
	if res.Regions[2].Box[0] != (Point{X: 9, Y: 9}) || res.Regions[2].Box[1] != (Point{}) {
		t.Errorf("Regions[2].Box = %v", res.Regions[2].Box)
	}
	if res.Regions[3].Box[1] != (Point{X: 2, Y: 3}) || res.Regions[3].Box[0] != (Point{}) {
		t.Errorf("Regions[3].Box = %v", res.Regions[3].Box)
	}
}

func TestParse_CustomSuccessCode(t *testing.T) {
	raw := RawResponse{Code: 0, Data: json.RawMessage(`[{"text":"ok","box":[[0,0],[1,0],[1,1],[0,1]],"score":1}]`)}
	res := raw.Parse(0)
	if !res.Ok || len(res.Regions) != 1 {
		t.Fatalf("got Ok=%v len=%d, want success under code 0", res.Ok, len(res.Regions))
	}
}

func TestText_Empty(t *testing.T) {
	if got := (Result{}).Text(); got != "" {
		t.Errorf("Text() = %q, want empty", got)
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"Path", Request{ImagePath: "a.png"}, false},
		{"Bytes", Request{ImageData: []byte{1}}, false},
		{"Clipboard", Request{}, false},
		{"Both", Request{ImagePath: "a.png", ImageData: []byte{1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
