package config

// Config holds the options of one CLI run. Zero Width/Height/FPS keep the
// values of the scenario.
type Config struct {
	ScenarioPath string
	OutputVideo  string
	Width        int
	Height       int
	FPS          int
	Workers      int
	AudioPath    string
	Preset       string
	VideoEncoder string
	Quality      int
	Debug        bool
	ShowStats    bool
	DumpStates   string
	BuildVersion string
}

// EncodeParams describes the stream handed to the video encoder.
type EncodeParams struct {
	Width, Height int
	FPS           int
	TotalFrames   int
	VideoEncoder  string
	Quality       int
	AudioPath     string
}

// PresetSize maps an aspect preset to an output size. ok is false for an
// unknown or empty preset.
func PresetSize(preset string) (width, height int, ok bool) {
	switch preset {
	case "16:9":
		return 1280, 720, true
	case "9:16":
		return 720, 1280, true
	case "4:5":
		return 1080, 1350, true
	}
	return 0, 0, false
}

// DefaultQuality picks a quality value suited to the encoder.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // bitrate = Q*100 kbit/s
	case "h264_nvenc":
		return 28
	default:
		return 23 // x264 CRF
	}
}
