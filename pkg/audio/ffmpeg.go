package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// FFmpegDecoder converts arbitrary containers to 16-bit PCM WAV by piping the
// input through ffmpeg. An empty Format lets ffmpeg probe the container;
// otherwise the demuxer is forced, which is what rescues recordings with
// missing or misleading headers.
type FFmpegDecoder struct {
	Format  string
	Path    string
	Timeout time.Duration
}

// NewFFmpegDecoder creates an ffmpeg decoder for the given container format
func NewFFmpegDecoder(format, path string, timeout time.Duration) *FFmpegDecoder {
	return &FFmpegDecoder{
		Format:  normalizeFormat(format),
		Path:    path,
		Timeout: timeout,
	}
}

func (d *FFmpegDecoder) Name() string {
	if d.Format == "" {
		return "ffmpeg"
	}
	return "ffmpeg:" + d.Format
}

func (d *FFmpegDecoder) Decode(ctx context.Context, data []byte) (*PCM, error) {
	if len(data) == 0 {
		return nil, errors.New("no input data")
	}

	binary := d.Path
	if binary == "" {
		binary = "ffmpeg"
	}
	binPath, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not available: %w", err)
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binPath, d.args()...)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
		}
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	out := fixWAVHeader(stdout.Bytes())
	return WAVDecoder{}.Decode(ctx, out)
}

func (d *FFmpegDecoder) args() []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if d.Format != "" {
		args = append(args, "-f", d.Format)
	}
	return append(args,
		"-i", "pipe:0",
		"-vn",
		"-map_metadata", "-1",
		"-fflags", "+bitexact",
		"-acodec", "pcm_s16le",
		"-f", "wav",
		"pipe:1",
	)
}
