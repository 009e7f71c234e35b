package constants

import (
	"path/filepath"
	"strings"
)

// PDF is the only document format the extractors accept.
const PDF = "PDF"

// AllowedExtensions holds the file extensions picked up from an input folder.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsDocument reports whether path has one of the AllowedExtensions.
func IsDocument(path string) bool {
	_, ok := AllowedExtensions[NormalizeExt(filepath.Ext(path))]
	return ok
}
