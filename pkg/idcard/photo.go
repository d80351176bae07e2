package idcard

import (
	"net/url"
	"strings"
)

// DocumentPassportPhoto is the document type rendered on the card front.
const DocumentPassportPhoto = "passport_photo"

// Document is an uploaded file reference as the registry reports it.
type Document struct {
	Type     string
	FilePath string
}

// PhotoURL resolves the first passport photo to a public uploads URL, or "" when none is attached.
func PhotoURL(base string, documents []Document) string {
	for _, doc := range documents {
		if doc.Type != DocumentPassportPhoto {
			continue
		}
		name := FileName(doc.FilePath)
		if name == "" {
			return ""
		}
		return strings.TrimRight(base, "/") + "/uploads/" + url.PathEscape(name)
	}
	return ""
}

// FileName returns the last path segment, treating both slash styles as separators.
func FileName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
