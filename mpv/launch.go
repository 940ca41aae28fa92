package mpv

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/user/trimline-cli/deps"
)

// LaunchOptions configures LaunchMpv.
type LaunchOptions struct {
	Binary      string // defaults to "mpv"
	SocketPath  string // defaults to DefaultSocketPath
	StartPaused bool
}

// LaunchMpv starts mpv with the specified video file and IPC socket enabled.
// It checks that mpv is installed first and returns an error with install link if not.
// Returns the *exec.Cmd for the running process which can be used for cleanup.
func LaunchMpv(videoPath string, opts LaunchOptions) (*exec.Cmd, error) {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}
	if opts.SocketPath == "" {
		opts.SocketPath = DefaultSocketPath
	}

	if err := deps.CheckBinary("mpv", opts.Binary, deps.MpvInstallURL); err != nil {
		return nil, err
	}

	// A stale socket from a previous run would make WaitForSocket succeed early.
	_ = os.Remove(opts.SocketPath)

	args := []string{
		"--input-ipc-server=" + opts.SocketPath,
		"--keep-open=yes",
		"--force-window=yes",
	}
	if opts.StartPaused {
		args = append(args, "--pause")
	}
	args = append(args, videoPath)

	cmd := exec.Command(opts.Binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return cmd, nil
}

// WaitForSocket connects client, retrying until mpv has created its socket or ctx
// is done.
func WaitForSocket(ctx context.Context, client *Client) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		err := client.Connect()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSocketNotFound) {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-ticker.C:
		}
	}
}
