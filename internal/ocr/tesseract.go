package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/menu-pricer/constants"
)

// Tesseract is the OCREngine backed by the tesseract CLI. Images are converted to
// grayscale and Otsu-binarized before recognition.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg Config, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "spa+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Tesseract{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner, for tests.
func (t *Tesseract) WithRunner(r Runner) *Tesseract {
	t.runner = r
	return t
}

// Recognize OCRs an image, or every rendered page of a scanned PDF.
func (t *Tesseract) Recognize(ctx context.Context, content []byte, ext string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "mp-ocr-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	var images [][]byte
	switch {
	case ext == "pdf":
		images, err = t.rasterizePDF(ctx, content, tmpDir)
	case constants.IsHEICExt(ext):
		var converted []byte
		converted, err = t.fromHEIC(ctx, content, ext, tmpDir)
		images = [][]byte{converted}
	default:
		images = [][]byte{content}
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, img := range images {
		in := filepath.Join(tmpDir, fmt.Sprintf("bin-%03d.png", i+1))
		if err := binarizeToFile(img, in); err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		txt, err := t.recognizeFile(ctx, in)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}

func (t *Tesseract) recognizeFile(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", t.cfg.TesseractLang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

func (t *Tesseract) rasterizePDF(ctx context.Context, content []byte, dir string) ([][]byte, error) {
	in := filepath.Join(dir, "scan.pdf")
	if err := os.WriteFile(in, content, 0o600); err != nil {
		return nil, err
	}
	prefix := filepath.Join(dir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := t.runner.Run(ctx, t.cfg.Pdftoppm, "-r", strconv.Itoa(t.cfg.DPI), "-png", in, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// prefix-1.png, prefix-2.png, ...
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if t.cfg.MaxPages > 0 && len(matches) > t.cfg.MaxPages {
		matches = matches[:t.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm rendered no pages")
	}
	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		b, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		pages = append(pages, b)
	}
	return pages, nil
}

func (t *Tesseract) fromHEIC(ctx context.Context, content []byte, ext, dir string) ([]byte, error) {
	in := filepath.Join(dir, "photo."+ext)
	if err := os.WriteFile(in, content, 0o600); err != nil {
		return nil, err
	}
	out, err := convertHEICtoPNG(ctx, t.runner, t.cfg.HeicConverter, in, dir)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(out)
}

func binarizeToFile(content []byte, path string) error {
	img, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	g := Grayscale(upscale(img))
	bin := Binarize(g, OtsuThreshold(g))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, bin); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s as png: %w", format, err)
	}
	return f.Close()
}
