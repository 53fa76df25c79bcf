// Package encode writes rendered frames to animation files and stills.
package encode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
)

// DPI is the bitmap resolution. A 750x825 frame is a 5x5.5 inch figure.
const DPI = 150

var (
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrEncoderClosed     = errors.New("encoder closed")
)

// Encoder consumes frames in order and finalizes the file on Close.
type Encoder interface {
	Add(img image.Image) error
	Close() error
}

// DrawFunc paints one frame into a canvas.
type DrawFunc func(c vgdraw.Canvas) error

// CheckPath reports whether path has an extension ForPath understands.
func CheckPath(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gif", ".mp4":
		return nil
	}
	return fmt.Errorf("%w: %q (want .gif or .mp4)", ErrUnsupportedFormat, path)
}

// ForPath returns an encoder for path, chosen by extension.
func ForPath(ctx context.Context, path string, fps int) (Encoder, error) {
	if err := CheckPath(path); err != nil {
		return nil, err
	}
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", fps)
	}
	if strings.EqualFold(filepath.Ext(path), ".gif") {
		return NewGIF(path, fps), nil
	}
	return NewFFmpeg(ctx, path, fps)
}

// Size converts a pixel size to canvas lengths at DPI.
func Size(width, height int) (vg.Length, vg.Length) {
	return vg.Length(width) * vg.Inch / DPI, vg.Length(height) * vg.Inch / DPI
}

// Image renders fn into a width x height bitmap.
func Image(width, height int, fn DrawFunc) (image.Image, error) {
	w, h := Size(width, height)
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(DPI), vgimg.UseBackgroundColor(color.White))
	if err := fn(vgdraw.New(c)); err != nil {
		return nil, err
	}
	return c.Image(), nil
}

// Still writes prefix_tag.png and prefix_tag.pdf and returns their paths.
func Still(prefix, tag string, width, height int, fn DrawFunc) ([]string, error) {
	base := prefix + "_" + tag
	w, h := Size(width, height)

	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(DPI), vgimg.UseBackgroundColor(color.White))
	if err := fn(vgdraw.New(img)); err != nil {
		return nil, fmt.Errorf("draw png: %w", err)
	}
	pngPath := base + ".png"
	if err := writeTo(pngPath, vgimg.PngCanvas{Canvas: img}); err != nil {
		return nil, err
	}

	pdf := vgpdf.New(w, h)
	if err := fn(vgdraw.New(pdf)); err != nil {
		return nil, fmt.Errorf("draw pdf: %w", err)
	}
	pdfPath := base + ".pdf"
	if err := writeTo(pdfPath, pdf); err != nil {
		return nil, err
	}
	return []string{pngPath, pdfPath}, nil
}

func writeTo(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// GIF collects quantized frames in memory and writes the animation on Close.
type GIF struct {
	path   string
	delay  int
	anim   gif.GIF
	closed bool
}

func NewGIF(path string, fps int) *GIF {
	delay := (100 + fps/2) / fps
	if delay < 1 {
		delay = 1
	}
	return &GIF{path: path, delay: delay, anim: gif.GIF{LoopCount: 0}}
}

func (g *GIF) Add(img image.Image) error {
	if g.closed {
		return ErrEncoderClosed
	}
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	draw.Draw(p, b, img, b.Min, draw.Src)
	g.anim.Image = append(g.anim.Image, p)
	g.anim.Delay = append(g.anim.Delay, g.delay)
	return nil
}

// Frames returns the number of frames added so far.
func (g *GIF) Frames() int { return len(g.anim.Image) }

func (g *GIF) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	if len(g.anim.Image) == 0 {
		return fmt.Errorf("gif %s: no frames", g.path)
	}
	f, err := os.Create(g.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", g.path, err)
	}
	if err := gif.EncodeAll(f, &g.anim); err != nil {
		f.Close()
		return fmt.Errorf("encode gif: %w", err)
	}
	return f.Close()
}

// FFmpeg pipes PNG frames into an ffmpeg process.
type FFmpeg struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	closed bool
}

// FFmpegArgs returns the ffmpeg arguments used to write path.
func FFmpegArgs(path string, fps int) []string {
	return []string{
		"-y", "-loglevel", "error",
		"-f", "image2pipe", "-framerate", fmt.Sprint(fps), "-c:v", "png", "-i", "-",
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		path,
	}
}

func NewFFmpeg(ctx context.Context, path string, fps int) (*FFmpeg, error) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("mp4 output needs ffmpeg: %w", err)
	}
	e := &FFmpeg{cmd: exec.CommandContext(ctx, bin, FFmpegArgs(path, fps)...)}
	e.cmd.Stderr = &e.stderr
	if e.stdin, err = e.cmd.StdinPipe(); err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return e, nil
}

func (e *FFmpeg) Add(img image.Image) error {
	if e.closed {
		return ErrEncoderClosed
	}
	if err := png.Encode(e.stdin, img); err != nil {
		return fmt.Errorf("ffmpeg pipe: %w: %s", err, strings.TrimSpace(e.stderr.String()))
	}
	return nil
}

func (e *FFmpeg) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(e.stderr.String()))
	}
	return nil
}
