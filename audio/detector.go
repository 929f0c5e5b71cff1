// @focus: #sys { audio }
package audio

import (
	"fmt"
	"os/exec"
	"strconv"
)

// recorder describes how to build the argument list of one CLI recorder
type recorder struct {
	Type BackendType
	Name string
	Bin  string
	Args func(rate string) []string
}

// recorders in detection order: parec > pw-record > arecord > rec (sox)
var recorders = []recorder{
	{
		// PulseAudio, also served by pipewire-pulse
		Type: BackendPulse,
		Name: "parec",
		Bin:  "parec",
		Args: func(rate string) []string {
			return []string{
				"--raw",
				"--format=s16le",
				"--rate=" + rate,
				"--channels=1",
				"--latency-msec=20",
			}
		},
	},
	{
		// PipeWire native
		Type: BackendPipeWire,
		Name: "pw-record",
		Bin:  "pw-record",
		Args: func(rate string) []string {
			return []string{
				"--format=s16",
				"--rate=" + rate,
				"--channels=1",
				"--latency=20ms",
				"-",
			}
		},
	},
	{
		// ALSA (Linux)
		Type: BackendALSA,
		Name: "arecord",
		Bin:  "arecord",
		Args: func(rate string) []string {
			return []string{
				"-t", "raw",
				"-f", "S16_LE",
				"-r", rate,
				"-c", "1",
				"-q",
			}
		},
	},
	{
		// SoX (cross-platform)
		Type: BackendSoX,
		Name: "sox",
		Bin:  "rec",
		Args: func(rate string) []string {
			return []string{
				"-q",
				"-t", "raw",
				"-e", "signed",
				"-b", "16",
				"-c", "1",
				"-r", rate,
				"-",
			}
		},
	},
}

// lookPath is replaced in tests
var lookPath = exec.LookPath

// DetectRecorder searches for an available capture recorder
// A non-empty override restricts detection to the recorder with that name
func DetectRecorder(override string, sampleRate int) (*BackendConfig, error) {
	rate := strconv.Itoa(sampleRate)

	for _, r := range recorders {
		if override != "" && override != r.Name && override != r.Bin {
			continue
		}
		path, err := lookPath(r.Bin)
		if err != nil {
			continue
		}
		return &BackendConfig{
			Type: r.Type,
			Name: r.Name,
			Path: path,
			Args: r.Args(rate),
		}, nil
	}

	if override != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoCaptureBackend, override)
	}
	return nil, ErrNoCaptureBackend
}
