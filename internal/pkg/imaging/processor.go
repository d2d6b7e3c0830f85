package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

// MaxFileSize in bytes (5MB)
const MaxFileSize int64 = 5 * 1024 * 1024

var (
	ErrTooLarge    = errors.New("image exceeds maximum size")
	ErrUnsupported = errors.New("image type not allowed")
)

// Cover is a course cover image and its thumbnail, both JPEG-encoded.
type Cover struct {
	Image       []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
}

// Config for image processing
type Config struct {
	CoverWidth  int // default 1280
	CoverHeight int // default 720
	ThumbWidth  int // default 400
	ThumbHeight int // default 225
	Quality     int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns 16:9 cover defaults
func DefaultConfig() Config {
	return Config{
		CoverWidth:  1280,
		CoverHeight: 720,
		ThumbWidth:  400,
		ThumbHeight: 225,
		Quality:     85,
	}
}

// Processor handles image processing
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// ProcessCover validates the upload, fits it into the cover box and crops a thumbnail.
func (p *Processor) ProcessCover(reader io.Reader) (*Cover, error) {
	data, err := io.ReadAll(io.LimitReader(reader, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrTooLarge
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/jpeg") && !strings.HasPrefix(mime, "image/png") {
		return nil, ErrUnsupported
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	cover := img
	if img.Bounds().Dx() > p.config.CoverWidth || img.Bounds().Dy() > p.config.CoverHeight {
		cover = imaging.Fit(img, p.config.CoverWidth, p.config.CoverHeight, imaging.Lanczos)
	}
	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)

	coverBytes, err := p.encode(cover)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cover: %w", err)
	}
	thumbBytes, err := p.encode(thumb)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return &Cover{
		Image:       coverBytes,
		Thumbnail:   thumbBytes,
		ContentType: "image/jpeg",
		Width:       cover.Bounds().Dx(),
		Height:      cover.Bounds().Dy(),
	}, nil
}

func (p *Processor) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CoverPaths returns storage keys for a course's cover and thumbnail
func CoverPaths(courseID, version string) (cover, thumb string) {
	cover = fmt.Sprintf("courses/%s/cover_%s.jpg", courseID, version)
	thumb = fmt.Sprintf("courses/%s/cover_%s_thumb.jpg", courseID, version)
	return
}
