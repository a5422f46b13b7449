// Package video assembles a directory of sequentially named PNG frames
// into a single MJPEG video file.
package video

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/icza/mjpeg"
)

// ErrFirstFrame indicates frame_0000.png could not be read back. Without it
// there is nothing to size the video from, so the mode's encode is fatal.
var ErrFirstFrame = errors.New("video: first frame not found")

const jpegQuality = 90

// FrameName returns the canonical zero-padded frame file name for an index.
func FrameName(idx int) string {
	return fmt.Sprintf("frame_%04d.png", idx)
}

// Encoder muxes rendered frames into one video at a fixed frame rate.
type Encoder struct {
	frameRate int
	log       *slog.Logger
}

func NewEncoder(frameRate int, logger *slog.Logger) *Encoder {
	return &Encoder{frameRate: frameRate, log: logger}
}

// Encode reads every PNG in framesDir in lexical filename order and writes
// them to outPath. The video is sized from frame 0. Unreadable intermediate
// frames are skipped with a warning; they never abort the encode or undo
// prior progress. Returns the number of frames written.
func (e *Encoder) Encode(framesDir, outPath string) (int, error) {
	first, err := readFrame(filepath.Join(framesDir, FrameName(0)))
	if err != nil {
		return 0, fmt.Errorf("%w: check that frames were saved correctly: %v", ErrFirstFrame, err)
	}
	bounds := first.Bounds()

	writer, err := mjpeg.New(outPath, int32(bounds.Dx()), int32(bounds.Dy()), int32(e.frameRate))
	if err != nil {
		return 0, fmt.Errorf("video: open writer %s: %w", outPath, err)
	}

	entries, err := os.ReadDir(framesDir)
	if err != nil {
		writer.Close()
		return 0, fmt.Errorf("video: read frames dir %s: %w", framesDir, err)
	}

	var buf bytes.Buffer
	written := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}
		img, err := readFrame(filepath.Join(framesDir, entry.Name()))
		if err != nil {
			e.log.Warn("skipping unreadable frame", "frame", entry.Name(), "error", err)
			continue
		}
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			writer.Close()
			return written, fmt.Errorf("video: encode %s: %w", entry.Name(), err)
		}
		if err := writer.AddFrame(buf.Bytes()); err != nil {
			writer.Close()
			return written, fmt.Errorf("video: add frame %s: %w", entry.Name(), err)
		}
		written++
	}

	if err := writer.Close(); err != nil {
		return written, fmt.Errorf("video: finalize %s: %w", outPath, err)
	}
	return written, nil
}

func readFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
