// Package media post-processes stored images: metadata is stripped and the
// file is recompressed through an ffmpeg pipe. Optimizer output replaces the
// original in place; callers treat failures as non-fatal and keep the
// unoptimized file.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
)

const (
	defaultJPEGQuality = 4
	defaultPNGLevel    = 6
	defaultTimeout     = 2 * time.Minute
)

type Processor interface {
	Optimize(ctx context.Context, data []byte, contentType string) ([]byte, error)
}

type FFMPEGOptimizer struct {
	path        string
	jpegQuality int
	pngLevel    int
	timeout     time.Duration
}

func NewFFMPEGOptimizer(binaryPath string) *FFMPEGOptimizer {
	path := strings.TrimSpace(binaryPath)
	if path == "" {
		path = "ffmpeg"
	}
	return &FFMPEGOptimizer{
		path:        path,
		jpegQuality: defaultJPEGQuality,
		pngLevel:    defaultPNGLevel,
		timeout:     defaultTimeout,
	}
}

func (p *FFMPEGOptimizer) Optimize(ctx context.Context, data []byte, contentType string) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty image data")
	}

	ct := NormalizeContentType(contentType, "")
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("media: decode image: %w", err)
	}

	codec, args, err := p.codecArgs(ct)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmdArgs := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-map_metadata", "-1",
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", codec,
	}
	cmdArgs = append(cmdArgs, args...)
	cmdArgs = append(cmdArgs, "pipe:1")

	cmd := exec.CommandContext(ctx, p.path, cmdArgs...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return nil, fmt.Errorf("ffmpeg: %v: %s", err, errMsg)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	result := stdout.Bytes()
	if len(result) == 0 {
		return nil, fmt.Errorf("ffmpeg: produced empty output")
	}
	// Recompression is not guaranteed to shrink small inputs; keep whichever
	// is smaller, metadata stripping aside.
	if len(result) >= len(data) {
		return data, nil
	}
	return result, nil
}

func (p *FFMPEGOptimizer) codecArgs(contentType string) (string, []string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return "mjpeg", []string{"-q:v", strconv.Itoa(p.jpegQuality)}, nil
	case "image/png":
		return "png", []string{"-compression_level", strconv.Itoa(p.pngLevel)}, nil
	default:
		return "", nil, fmt.Errorf("media: unsupported content type %s", contentType)
	}
}

// NormalizeContentType resolves a usable MIME type from the declared header
// or, failing that, the file extension.
func NormalizeContentType(value, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(value))
	if ct != "" {
		if ct == "image/jpg" {
			return "image/jpeg"
		}
		return ct
	}
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName)))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return strings.ToLower(mt)
		}
	}
	return "image/jpeg"
}
