package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

type audioDecoder func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

// Formats decoded without ffprobe
var audioDecoders = map[string]audioDecoder{
	".wav":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	".mp3":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".ogg":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
	".flac": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) },
}

// GetAudioDuration returns the length of an audio file in seconds.
func GetAudioDuration(path string) (float64, error) {
	decode, ok := audioDecoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return probeDuration(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	stream, format, err := decode(f)
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	defer stream.Close()

	return format.SampleRate.D(stream.Len()).Seconds(), nil
}

func probeDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}
