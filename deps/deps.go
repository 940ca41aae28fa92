package deps

import (
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	Binary     string
	InstallURL string
}

func (e *DependencyError) Error() string {
	if e.Binary != "" && e.Binary != e.Name {
		return fmt.Sprintf("%s (%s) not found. Install from: %s", e.Name, e.Binary, e.InstallURL)
	}
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// CheckBinary checks that binary (a name on PATH or a path) is available.
func CheckBinary(name, binary, installURL string) error {
	if binary == "" {
		binary = name
	}
	if _, err := lookPath(binary); err != nil {
		return &DependencyError{
			Name:       name,
			Binary:     binary,
			InstallURL: installURL,
		}
	}
	return nil
}

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	return CheckBinary("mpv", "mpv", MpvInstallURL)
}

// CheckFfmpeg checks if ffmpeg is installed and available in PATH
func CheckFfmpeg() error {
	return CheckBinary("ffmpeg", "ffmpeg", FfmpegInstallURL)
}

// CheckFfprobe checks if ffprobe (shipped with ffmpeg) is available in PATH
func CheckFfprobe() error {
	return CheckBinary("ffprobe", "ffprobe", FfmpegInstallURL)
}

// CheckAll checks all dependencies and returns a slice of errors for missing ones
func CheckAll() []error {
	var errs []error
	for _, check := range []func() error{CheckMpv, CheckFfmpeg, CheckFfprobe} {
		if err := check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
