package ui

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pascal-r/glyphcast/internal/capture"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename strips characters invalid in filenames and trims
// whitespace. Falls back to "recording" if the result is empty.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "recording"
	}
	return name
}

// SaveBlob writes an export artifact to the current directory, named after
// the source title with the container's extension. Refuses to overwrite.
func SaveBlob(blob *capture.Blob, title string) (string, error) {
	destName := blob.Filename(SanitizeFilename(title))

	if _, err := os.Stat(destName); err == nil {
		return "", fmt.Errorf("file %q already exists", destName)
	}
	if err := os.WriteFile(destName, blob.Data, 0o644); err != nil {
		return "", err
	}
	return destName, nil
}
