package storage

import (
	"path/filepath"
	"strings"
)

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html":
		return "text/html"
	case ".css":
		return "text/css"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".json", ".geojson":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".prom", ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
