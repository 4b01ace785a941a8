package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Frame is one stereo sample pair as produced by the decoder. Mono
// recordings carry the same value in both channels.
type Frame = [2]float64

// OpenOptions controls the fallback used when a WAV file cannot be
// decoded directly.
type OpenOptions struct {
	// Transcode converts undecodable files to 16-bit PCM with ffmpeg.
	Transcode bool
	// TempDir receives transcoded copies; empty means os.TempDir.
	TempDir string
}

// Source is an open WAV recording supporting random-access reads. It is
// not safe for concurrent use.
type Source struct {
	path    string
	stream  beep.StreamSeekCloser
	format  beep.Format
	gain    float64
	cleanup func()
}

// Open decodes the WAV header at path and keeps the file open for reads.
func Open(ctx context.Context, path string, opts OpenOptions) (*Source, error) {
	src, err := openWAV(path)
	if err == nil || !opts.Transcode {
		return src, err
	}

	decodeErr := err
	tmpDir, err := os.MkdirTemp(opts.TempDir, "gridset-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	pcmPath := filepath.Join(tmpDir, "pcm.wav")
	if err := TranscodeToPCM(ctx, path, pcmPath); err != nil {
		cleanup()
		return nil, errors.Join(decodeErr, err)
	}

	src, err = openWAV(pcmPath)
	if err != nil {
		cleanup()
		return nil, err
	}
	src.path = path
	src.cleanup = cleanup
	return src, nil
}

func openWAV(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	stream, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return &Source{
		path:   path,
		stream: stream,
		format: format,
		gain:   decoderGain(format.Precision),
	}, nil
}

// wav.Decode divides 16- and 24-bit PCM by 2^bits-1; full scale is 2^(bits-1)
func decoderGain(precision int) float64 {
	switch precision {
	case 2, 3:
		bits := uint(8 * precision)
		return float64(uint64(1)<<bits-1) / float64(uint64(1)<<(bits-1))
	default:
		return 1
	}
}

func (s *Source) Path() string {
	return s.path
}

// native sampling rate from the file header
func (s *Source) SampleRate() int {
	return int(s.format.SampleRate)
}

func (s *Source) Channels() int {
	return s.format.NumChannels
}

// length in frames
func (s *Source) Len() int {
	return s.stream.Len()
}

// ReadFrames seeks to frame start and reads n frames. Offsets are not
// clamped: a seek outside the file is reported as an error. Counts
// reaching past the end of file return the frames up to the end.
func (s *Source) ReadFrames(start, n int) ([]Frame, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid frame count %d", n)
	}
	if err := s.stream.Seek(start); err != nil {
		return nil, fmt.Errorf("seek to frame %d: %w", start, err)
	}
	if avail := s.stream.Len() - start; n > avail {
		n = avail
	}

	frames := make([]Frame, n)
	read := 0
	for read < n {
		got, ok := s.stream.Stream(frames[read:])
		read += got
		if !ok || got == 0 {
			break
		}
	}
	if err := s.stream.Err(); err != nil {
		return nil, fmt.Errorf("read frames [%d, %d): %w", start, start+n, err)
	}

	frames = frames[:read]
	if s.gain != 1 {
		for i := range frames {
			frames[i][0] *= s.gain
			frames[i][1] *= s.gain
		}
	}
	return frames, nil
}

// Close releases the file handle and any transcoded copy.
func (s *Source) Close() error {
	err := s.stream.Close()
	if s.cleanup != nil {
		s.cleanup()
	}
	return err
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".wma":  true,
		".aiff": true,
	}
	return audioExts[ext]
}
