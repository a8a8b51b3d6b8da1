// Package pdf renders uploaded posturography reports to raster images and
// validates the incoming PDF payloads.
package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"sort"

	"github.com/gen2brain/go-fitz"

	"github.com/mcftira/baropodometry-web/internal/observability"
)

// baseDPI is go-fitz's native rendering resolution; Scale multiplies it.
const baseDPI = 72.0

// PageImage is one rasterized report page.
type PageImage struct {
	Page    int    // 1-based page number in the source PDF
	DataURL string // data:image/png;base64,...
}

// Renderer converts PDF bytes to base64 PNG data URLs using go-fitz.
type Renderer struct {
	scale  float64
	logger *observability.Logger
}

// NewRenderer creates a renderer with the given upscale factor.
func NewRenderer(scale float64, logger *observability.Logger) *Renderer {
	if scale <= 0 {
		scale = 2.0
	}
	return &Renderer{scale: scale, logger: logger.WithComponent("pdf")}
}

// Render rasterizes the requested 1-based pages of the document to PNG data
// URLs, in page order. Pages beyond the document length are skipped. Any
// failure yields an empty slice, never an error: callers treat an empty
// result as "no visual aid available".
func (r *Renderer) Render(ctx context.Context, pdfBytes []byte, pages []int) []PageImage {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to open PDF for rendering")
		return nil
	}
	defer doc.Close()

	wanted := append([]int(nil), pages...)
	sort.Ints(wanted)

	total := doc.NumPage()
	images := make([]PageImage, 0, len(wanted))

	for _, page := range wanted {
		select {
		case <-ctx.Done():
			r.logger.Warn().Err(ctx.Err()).Msg("Rendering cancelled")
			return nil
		default:
		}

		if page < 1 || page > total {
			continue
		}

		img, err := doc.ImageDPI(page-1, baseDPI*r.scale)
		if err != nil {
			r.logger.Warn().Err(err).Int("page", page).Msg("Failed to rasterize page")
			return nil
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			r.logger.Warn().Err(err).Int("page", page).Msg("Failed to encode page as PNG")
			return nil
		}

		images = append(images, PageImage{
			Page:    page,
			DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		})
	}

	return images
}
