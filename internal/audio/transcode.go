package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/gridset/internal/ffmpeg"
)

// the WAV decoder handles at most two channels
const maxDecodableChannels = 2

// JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		Channels   int    `json:"channels"`
		SampleRate string `json:"sample_rate"`
	} `json:"streams"`
}

// StreamInfo describes the first audio stream of a file.
type StreamInfo struct {
	Codec    string
	Channels int
}

// Probe reads the first audio stream's codec and channel count.
func Probe(ctx context.Context, filePath string) (*StreamInfo, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio stream in %s", filepath.Base(filePath))
	}

	return &StreamInfo{
		Codec:    probe.Streams[0].CodecName,
		Channels: probe.Streams[0].Channels,
	}, nil
}

// TranscodeToPCM rewrites inputPath as 16-bit PCM WAV at its native
// sampling rate. Recordings with more than two channels are downmixed
// to stereo.
func TranscodeToPCM(ctx context.Context, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"vn":     "",          // No video
		"acodec": "pcm_s16le", // 16-bit PCM
		"f":      "wav",
	}

	// channel count is best effort; without ffprobe ffmpeg keeps the layout
	if info, err := Probe(ctx, inputPath); err == nil && info.Channels > maxDecodableChannels {
		kwargs["ac"] = maxDecodableChannels
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("transcode failed: %w", err)
	}

	return nil
}
