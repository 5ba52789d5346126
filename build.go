//go:build ignore

// Build script: minifies templates/ and static/ into dist/ for production
// serving. Run with: go run build.go
package main

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

func main() {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)

	for _, dir := range []string{"dist/templates", "dist/static"} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal(err)
		}
	}

	if err := minifyTree("templates", "dist/templates", "text/html", m); err != nil {
		log.Fatal(err)
	}
	if err := minifyTree("static", "dist/static", "", m); err != nil {
		log.Fatal(err)
	}
	log.Println("Build complete: dist/")
}

// minifyTree walks src and writes minified copies into dst. Files without a
// known media type are copied verbatim.
func minifyTree(src, dst, defaultType string, m *minify.M) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}

		mediaType := defaultType
		switch strings.ToLower(filepath.Ext(path)) {
		case ".css":
			mediaType = "text/css"
		case ".html":
			mediaType = "text/html"
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if mediaType == "" {
			return os.WriteFile(out, data, 0644)
		}

		minified, err := m.Bytes(mediaType, data)
		if err != nil {
			log.Printf("Minify failed for %s, copying as-is: %v", path, err)
			minified = data
		}
		log.Printf("%s: %d -> %d bytes", rel, len(data), len(minified))
		return os.WriteFile(out, minified, 0644)
	})
}
