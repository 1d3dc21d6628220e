//go:build ignore

// Command mock-ppocr simulates a PaddleOCR-json engine for integration
// tests. It prints model-loading diagnostics, the readiness marker,
// then answers one JSON line per request line until stdin closes.
//
// The MOCK_PPOCR_MODE environment variable selects failure modes:
//
//	MOCK_PPOCR_MODE=chatty          — print diagnostics forever, never the marker
//	MOCK_PPOCR_MODE=exit-after-init — print the marker, then exit
//	MOCK_PPOCR_MODE=crash           — exit 3 on the first request
//	MOCK_PPOCR_MODE=garbage         — answer requests with a non-JSON line
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

var mode = os.Getenv("MOCK_PPOCR_MODE")

func main() {
	fmt.Println("mock-ppocr v1.2.1")

	if mode == "chatty" {
		for i := 0; i < 200; i++ {
			fmt.Printf("loading model shard %d\n", i)
		}
		return
	}

	fmt.Println("loading det model")
	fmt.Println("loading rec model")
	fmt.Println("OCR init completed.")

	if mode == "exit-after-init" {
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 4096), 1<<24)
	for scanner.Scan() {
		handleRequest(scanner.Text())
	}
}

func handleRequest(line string) {
	switch {
	case mode == "crash":
		os.Exit(3)
	case mode == "garbage":
		fmt.Println("glog: W0101 detector warning, rerun with --help")
	case strings.Contains(line, "empty.png"):
		fmt.Println(`{"code":101,"data":"No text found in image."}`)
	case strings.Contains(line, "image_base64"):
		fmt.Println(`{"code":100,"data":[{"text":"inline","box":[[0,0],[32,0],[32,12],[0,12]],"score":0.91}]}`)
	case line == "{}":
		fmt.Println(`{"code":100,"data":[{"text":"clipboard","box":[[0,0],[64,0],[64,20],[0,20]],"score":0.88}]}`)
	default:
		fmt.Println(`{"code":100,"data":[{"text":"hello","box":[[12,5],[80,5],[80,30],[12,30]],"score":0.98},{"text":"world","box":[[12,40],[90,40],[90,66],[12,66]],"score":0.95}]}`)
	}
}
