package prep

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"

	// decoders registered for image.Decode
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

type Config struct {
	MaxEdge int // longest edge after scaling; default constants.MaxImageEdge
	Quality int // JPEG quality 1..100; default constants.ImageQuality
}

// Normalizer turns uploaded documents into bounded payloads for the extraction backend.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	cfg    Config
	logger *slog.Logger
}

func NewNormalizer(cfg Config, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxEdge <= 0 {
		cfg.MaxEdge = constants.MaxImageEdge
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = constants.ImageQuality
	}
	return &Normalizer{cfg: cfg, logger: logger}
}

// Normalize re-encodes raster images as bounded JPEG and passes everything else through.
// A decode or encode failure falls back to the original bytes; it never errors.
func (n *Normalizer) Normalize(doc entity.SourceDocument) entity.NormalizedPayload {
	passthrough := entity.NormalizedPayload{
		MediaType: constants.BaseMediaType(doc.MediaType),
		Content:   doc.Content,
	}
	if constants.MapMediaTypeToFormat(doc.MediaType) != constants.IMAGE {
		return passthrough
	}

	out, w, h, err := n.compressImage(doc.Content)
	if err != nil {
		n.logger.Warn("prep.normalize.fallback",
			"document_id", doc.ID,
			"filename", doc.Filename,
			"media_type", doc.MediaType,
			"error", err,
		)
		return passthrough
	}

	n.logger.Debug("prep.normalize.ok",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"in_bytes", len(doc.Content),
		"out_bytes", len(out),
		"width", w,
		"height", h,
	)
	return entity.NormalizedPayload{
		MediaType:  constants.MediaTypeJPEG,
		Content:    out,
		Normalized: true,
	}
}

func (n *Normalizer) compressImage(data []byte) ([]byte, int, int, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode: %w", err)
	}
	b := src.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), n.cfg.MaxEdge)
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
	}

	// JPEG has no alpha; flatten onto white first
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.cfg.Quality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// ScaledSize bounds (w, h) so that the larger side equals maxEdge, keeping aspect ratio.
// Sizes already within the bound are returned unchanged.
func ScaledSize(w, h, maxEdge int) (int, int) {
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return w, h
	}
	if w >= h {
		nh := int(float64(h)*float64(maxEdge)/float64(w) + 0.5)
		return maxEdge, max(nh, 1)
	}
	nw := int(float64(w)*float64(maxEdge)/float64(h) + 0.5)
	return max(nw, 1), maxEdge
}
