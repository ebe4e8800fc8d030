package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

// numberedPath inserts a frame index before the extension when more than one
// frame goes to the same output name
func numberedPath(out string, i, count int) string {
	if out == "" || count <= 1 {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(out, ext), i, ext)
}

// replayOutput names the processed copy of in: same base name as a PNG in
// outDir, or no output when outDir is empty
func replayOutput(in, outDir string) string {
	if outDir == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(outDir, base+".png")
}
