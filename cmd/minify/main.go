// Command minify minifies a single asset file. It backs the build script
// for one-off use, e.g. go run ./cmd/minify -input=static/style.css
// -output=dist/static/style.css -type=css
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

func main() {
	var (
		inputFile  = flag.String("input", "", "Input file path")
		outputFile = flag.String("output", "", "Output file path")
		fileType   = flag.String("type", "", "File type (css, js, or html)")
	)
	flag.Parse()

	if *inputFile == "" || *outputFile == "" || *fileType == "" {
		log.Fatal("Usage: go run ./cmd/minify -input=<file> -output=<file> -type=<css|js|html>")
	}

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	input, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("application/javascript", js.Minify)

	var mediaType string
	switch strings.ToLower(*fileType) {
	case "css":
		mediaType = "text/css"
	case "html":
		mediaType = "text/html"
	case "js":
		mediaType = "application/javascript"
	default:
		log.Fatalf("Unknown file type: %s", *fileType)
	}

	output, err := m.Bytes(mediaType, input)
	if err != nil {
		log.Fatalf("Minification failed: %v", err)
	}

	if err := os.WriteFile(*outputFile, output, 0644); err != nil {
		log.Fatalf("Failed to write output file: %v", err)
	}
	log.Printf("Minified %s: %d -> %d bytes", *inputFile, len(input), len(output))
}
