package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// env overrides checked before PATH
const (
	envFFmpegPath  = "GRIDSET_FFMPEG_PATH"
	envFFprobePath = "GRIDSET_FFPROBE_PATH"
)

var ErrNotFound = errors.New("ffmpeg binary not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure resolves the ffmpeg and ffprobe binaries once per process.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = locate(os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	if paths.FFprobe == "" {
		return "", fmt.Errorf("%w: ffprobe", ErrNotFound)
	}
	return paths.FFprobe, nil
}

// ffprobe is optional; only ffmpeg is required for transcoding
func locate(
	getenv func(string) string,
	lookPath func(string) (string, error),
) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  getenv(envFFmpegPath),
		FFprobe: getenv(envFFprobePath),
	}

	if paths.FFmpeg == "" {
		if found, err := lookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := lookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}

	if paths.FFmpeg == "" {
		return BinaryPaths{}, fmt.Errorf(
			"%w: install ffmpeg or set %s",
			ErrNotFound,
			envFFmpegPath,
		)
	}
	if !fileExists(paths.FFmpeg) {
		return BinaryPaths{}, fmt.Errorf("%w: %s", ErrNotFound, paths.FFmpeg)
	}
	return paths, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
