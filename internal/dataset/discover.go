package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/gridset/internal/audio"
)

// ListAnnotations returns the files directly inside dir whose names end
// in ext, sorted by name. Subdirectories are not searched.
func ListAnnotations(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// AudioPath replaces the annotation's extension with audioExt.
func AudioPath(docPath, audioExt string) string {
	return strings.TrimSuffix(docPath, filepath.Ext(docPath)) + audioExt
}

// SiblingAudio lists other audio files sharing the annotation's base
// name, e.g. a .flac next to a TextGrid whose .wav is missing.
func SiblingAudio(docPath, audioExt string) []string {
	dir := filepath.Dir(docPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	stem := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	expected := filepath.Base(AudioPath(docPath, audioExt))

	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == expected {
			continue
		}
		if strings.TrimSuffix(name, filepath.Ext(name)) == stem && audio.IsAudioFile(name) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
