// Package web serves the built single-page front end and gates its private
// sections behind the CMS session.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed dist/*
var placeholder embed.FS

// Placeholder returns the embedded fallback site used when no build
// directory is configured.
func Placeholder() fs.FS {
	fsys, err := fs.Sub(placeholder, "dist")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Handler returns an http.Handler that serves the SPA assets in fsys.
// Unknown paths get index.html so the client-side router can resolve deep
// links.
func Handler(fsys fs.FS) (http.Handler, error) {
	indexBytes, err := fs.ReadFile(fsys, "index.html")
	if err != nil {
		return nil, fmt.Errorf("reading index.html: %w", err)
	}

	static := http.FileServer(http.FS(fsys))

	serveIndex := func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(indexBytes)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleanPath := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if cleanPath == "" || cleanPath == "." || cleanPath == "index.html" {
			serveIndex(w)
			return
		}

		if info, err := fs.Stat(fsys, cleanPath); err == nil && !info.IsDir() {
			static.ServeHTTP(w, r)
			return
		}

		// BrowserRouter deep-link fallback.
		serveIndex(w)
	}), nil
}
