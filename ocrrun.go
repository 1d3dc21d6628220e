// Package ocrrun supervises a PaddleOCR-style OCR engine running as a
// child process and speaks its newline-delimited JSON protocol.
//
// The engine binary (e.g. PaddleOCR-json) reads one JSON request per
// line on stdin and writes one JSON response per line on stdout. ocrrun
// owns the subprocess lifecycle: it spawns the binary, waits for the
// readiness marker the engine prints once its models are loaded, and
// then serves strictly one-at-a-time request/response exchanges until
// the session is closed.
//
// # Core Types
//
//   - [Engine] — the supervisor: one child process, one session
//   - [Request] — a single OCR request (file path, raw bytes, or clipboard)
//   - [RawResponse] — one decoded wire line (status code + payload)
//   - [Result] — structured recognition outcome derived from a RawResponse
//   - [Proc] — the child-process seam; swap it to test without a binary
//
// # Quick Start
//
//	eng, err := ocrrun.New("/opt/ppocr/PaddleOCR-json",
//	    ocrrun.WithConfigPath("models/config_chinese.txt"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	res, err := eng.OCRFile(ctx, "/tmp/receipt.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, reg := range res.Regions {
//	    fmt.Println(reg.Text, reg.Score)
//	}
//
// # Failure Model
//
// Transport failures ([ErrEngineDown], [ErrDesync]) poison the Engine:
// the child is terminated and every later Send fails fast with the
// stored error. Engine-reported failures (no text found, unreadable
// image) are normal [Result] values with Ok == false — the session
// stays usable. The two are never conflated.
//
// # Concurrency
//
// The wire protocol is half-duplex with no request IDs, so the Nth
// response answers the Nth request. [Engine.Send] holds one lock for
// the whole write+read exchange; callers wanting parallel throughput
// run multiple Engines, each owning its own child process.
package ocrrun
