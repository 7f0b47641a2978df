package codec

import (
	"bytes"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"time"

	"fileforge/internal/common"
	"fileforge/internal/domain/transform"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/go-pdf/fpdf"
)

// pdfEpoch is stamped as creation date so identical pages give identical
// documents.
var pdfEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// PointsPerInch converts between pixels at a DPI and PDF points.
const PointsPerInch = 72.0

// PDFCodec reads PDFs through MuPDF and writes them with fpdf. Every page of
// a written document is a single JPEG raster.
type PDFCodec struct {
	logger *slog.Logger
}

// NewPDFCodec creates a new PDF codec
func NewPDFCodec(logger *slog.Logger) *PDFCodec {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFCodec{logger: logger}
}

func (c *PDFCodec) open(data []byte) (*fitz.Document, error) {
	format, err := Sniff(data, "")
	if err != nil {
		return nil, err
	}
	if format != transform.FormatPDF {
		return nil, fmt.Errorf("%w: %s is not a PDF", common.ErrUnsupportedFormat, format)
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptData, err)
	}
	return doc, nil
}

// PageCount returns the number of pages in the document.
func (c *PDFCodec) PageCount(data []byte) (int, error) {
	doc, err := c.open(data)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	n := doc.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("%w: document has no pages", common.ErrCorruptData)
	}
	return n, nil
}

// Rasterize renders the given 1-based pages at dpi. An empty selection
// renders every page.
func (c *PDFCodec) Rasterize(data []byte, pages []int, dpi float64) ([]transform.PageImage, error) {
	doc, err := c.open(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	total := doc.NumPage()
	if len(pages) == 0 {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	out := make([]transform.PageImage, 0, len(pages))
	for _, p := range pages {
		if p < 1 || p > total {
			return nil, fmt.Errorf("%w: page %d of %d", common.ErrInvalidPageSelection, p, total)
		}
		img, err := doc.ImageDPI(p-1, dpi)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", common.ErrCorruptData, p, err)
		}
		b := img.Bounds()
		out = append(out, transform.PageImage{
			Image:    img,
			WidthPt:  float64(b.Dx()) * PointsPerInch / dpi,
			HeightPt: float64(b.Dy()) * PointsPerInch / dpi,
		})
	}
	c.logger.Debug("Rasterized PDF pages", "pages", len(out), "dpi", dpi)
	return out, nil
}

// Compose writes pages, in order, into a new PDF. Each raster is embedded
// as a JPEG at quality and stretched over its page.
func (c *PDFCodec) Compose(pages []transform.PageImage, quality int) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to compose", common.ErrEncode)
	}

	first := pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: first.WidthPt, Ht: first.HeightPt},
	})
	pdf.SetCreationDate(pdfEpoch)
	pdf.SetModificationDate(pdfEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	for i, page := range pages {
		if page.Image == nil || page.WidthPt <= 0 || page.HeightPt <= 0 {
			return nil, fmt.Errorf("%w: page %d has no content", common.ErrEncode, i+1)
		}
		img := page.Image
		if HasAlpha(img) {
			img = Flatten(img, color.White)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(common.Clamp(quality, 1, 100))); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", common.ErrEncode, i+1, err)
		}

		name := "page-" + strconv.Itoa(i+1)
		// "P" keeps Wd and Ht as given; "L" would swap them.
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.WidthPt, Ht: page.HeightPt})
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, 0, 0, page.WidthPt, page.HeightPt, false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncode, err)
	}
	return out.Bytes(), nil
}
