package clip

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputPath computes where a trim of assetPath is written.
// Filename format: {base}-{HHMMSS}-{HHMMSS}-{job8}{ext}
func OutputPath(outDir, assetPath, jobID string, start, end float64) string {
	ext := filepath.Ext(assetPath)
	if ext == "" {
		ext = ".mp4"
	}
	base := strings.TrimSuffix(filepath.Base(assetPath), filepath.Ext(assetPath))
	base = strings.ToLower(strings.ReplaceAll(base, " ", "_"))

	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}

	filename := fmt.Sprintf("%s-%s-%s-%s%s", base, stamp(start), stamp(end), short, ext)
	return filepath.Join(outDir, filename)
}

func stamp(seconds float64) string {
	totalSecs := int(seconds)
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%02d%02d%02d", hours, minutes, secs)
}
