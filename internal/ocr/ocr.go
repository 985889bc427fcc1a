// Package ocr turns invoice files into plain text: the PDF text layer first, then image OCR
// through an optional engine.
package ocr

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// Acquisition methods.
const (
	MethodPDFText  = "pdf-text"
	MethodImageOCR = "image-ocr"
	MethodNone     = "none"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // rasterizes scanned PDFs before OCR; if empty -> "pdftoppm"

	TesseractLang string // default "spa+eng"
	TessdataDir   string
	HeicConverter string // "heif-convert" | "magick" | "sips"

	DPI      int // rasterization DPI for scanned PDFs, default 300
	MaxPages int // 0 = no limit
	PSM      int // e.g., 6 is good for uniform block of text
}

// Acquisition is the text recovered from one document.
type Acquisition struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | ""
	Method     string // MethodPDFText | MethodImageOCR | MethodNone
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Empty reports whether no text was recovered.
func (a Acquisition) Empty() bool { return strings.TrimSpace(a.Text) == "" }

// PageExtractor returns the text layer of a PDF, one entry per page.
type PageExtractor interface {
	Pages(ctx context.Context, content []byte) ([]string, error)
}

// OCREngine recognizes text in a raster document. ext is the normalized file extension.
type OCREngine interface {
	Recognize(ctx context.Context, content []byte, ext string) (string, error)
}

// Acquirer runs text acquisition. A nil engine disables OCR; documents without a text
// layer then acquire empty text.
type Acquirer struct {
	pages  PageExtractor
	engine OCREngine
	logger *slog.Logger
}

func NewAcquirer(pages PageExtractor, engine OCREngine, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if pages == nil {
		pages = PDFText{}
	}
	return &Acquirer{pages: pages, engine: engine, logger: logger}
}

// OCREnabled reports whether an OCR engine is configured.
func (a *Acquirer) OCREnabled() bool { return a.engine != nil }

// Acquire never fails: unreadable documents yield an empty Acquisition with warnings.
func (a *Acquirer) Acquire(ctx context.Context, doc entity.Document) Acquisition {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(doc.Name))
	res := Acquisition{SourceType: constants.MapExtToFormat(ext), Method: MethodNone}
	log := a.logger.With("document", doc.Name, "ext", ext)

	if ext == "pdf" {
		pages, err := a.pages.Pages(ctx, doc.Content)
		switch {
		case err != nil:
			log.Warn("ocr.pdf_text.failed", "error", err)
			res.Warnings = append(res.Warnings, "pdf text: "+err.Error())
		default:
			res.Pages = len(pages)
			if txt := Normalize(strings.Join(pages, "\n")); txt != "" {
				res.Text = txt
				res.Method = MethodPDFText
			}
		}
	}

	if res.Text == "" {
		switch {
		case a.engine == nil:
			log.Debug("ocr.engine.absent")
		case ctx.Err() != nil:
			res.Warnings = append(res.Warnings, "ocr skipped: "+ctx.Err().Error())
		default:
			txt, err := a.engine.Recognize(ctx, doc.Content, ext)
			if err != nil {
				log.Warn("ocr.image.failed", "error", err)
				res.Warnings = append(res.Warnings, "ocr: "+err.Error())
				break
			}
			if txt = Normalize(txt); txt != "" {
				res.Text = txt
				res.Method = MethodImageOCR
				if res.Pages == 0 {
					res.Pages = 1
				}
			}
		}
	}

	if res.Text != "" {
		res.Confidence = heuristicConfidence(res.Text)
	}
	res.Duration = time.Since(start)
	log.Debug("ocr.acquired",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res
}
