package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Synthesizer writes spoken text to a WAV file using a local engine that
// accepts "-w <file> -- <text>", such as espeak-ng or espeak.
type Synthesizer struct {
	command string
	output  string
}

func NewSynthesizer(command, output string) *Synthesizer {
	return &Synthesizer{command: command, output: output}
}

// Output is the path the audio is written to.
func (s *Synthesizer) Output() string { return s.output }

// Synthesize speaks text into the output file and returns its path.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(s.output), 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	// "--" keeps text starting with a dash from being read as an option
	cmd := exec.CommandContext(ctx, s.command, "-w", s.output, "--", text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to synthesize speech with %s: %w: %s", s.command, err, out)
	}
	log.Debug().Str("path", s.output).Msg("Synthesized answer audio")
	return s.output, nil
}
