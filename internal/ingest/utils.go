package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/menu-pricer/constants"
)

// AllowedExt checks if a file extension is in the default allowed set.
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}

func allowedIn(path string, exts map[string]struct{}) bool {
	if exts == nil {
		return AllowedExt(filepath.Ext(path))
	}
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
