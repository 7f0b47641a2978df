package pipeline

import (
	"encoding/json"
	"fmt"
	"testing"

	"fileforge/internal/domain/transform"
	"fileforge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// composeDoc builds an n-page PDF from gradient images of growing width.
func composeDoc(t *testing.T, p *Pipeline, n int) transform.InputFile {
	t.Helper()
	var files []transform.InputFile
	for i := 0; i < n; i++ {
		files = append(files, pngFile(t, fmt.Sprintf("p%d.png", i), 60+20*i, 80))
	}
	results, errs := runAll(t, p, &transform.PdfCompose{Files: files, OutputName: "doc.pdf"})
	require.NoError(t, errs[0])
	require.Len(t, results, 1)
	return transform.InputFile{Name: "doc.pdf", MimeType: "application/pdf", Data: results[0].Output}
}

func TestComposePreservesOrderAndCount(t *testing.T) {
	p := newTestPipeline(t)
	doc := composeDoc(t, p, 3)

	n, err := p.pdfs.PageCount(doc.Data)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	pages, err := p.pdfs.Rasterize(doc.Data, nil, 72)
	require.NoError(t, err)
	for i, page := range pages {
		assert.InDelta(t, 60+20*i, page.Image.Bounds().Dx(), 1)
	}
}

func TestComposeMixesImagesAndPDFs(t *testing.T) {
	p := newTestPipeline(t)
	doc := composeDoc(t, p, 2)

	results, errs := runAll(t, p, &transform.PdfCompose{Files: []transform.InputFile{
		jpegFile(t, "cover.jpg", 50, 50),
		doc,
	}})
	require.NoError(t, errs[0])

	n, err := p.pdfs.PageCount(results[0].Output)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "combined.pdf", results[0].OutputName)
	assert.Equal(t, "application/pdf", results[0].MimeType)
}

func TestComposeFailsOnCorruptInput(t *testing.T) {
	p := newTestPipeline(t)

	_, errs := runAll(t, p, &transform.PdfCompose{Files: []transform.InputFile{
		pngFile(t, "ok.png", 10, 10),
		{Name: "bad.jpg", MimeType: "image/jpeg", Data: testutil.CorruptJPEG()},
	}})
	assert.Equal(t, transform.KindCorruptData, transform.KindOf(errs[0]))
}

func TestSplitSelectsPages(t *testing.T) {
	p := newTestPipeline(t)
	doc := composeDoc(t, p, 4)

	results, errs := runAll(t, p, &transform.PdfSplit{File: doc, PageSelection: []int{2, 4}})
	require.NoError(t, errs[0])
	require.Len(t, results, 1)
	assert.Equal(t, "doc-split.pdf", results[0].OutputName)

	pages, err := p.pdfs.Rasterize(results[0].Output, nil, 72)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.InDelta(t, 80, pages[0].Image.Bounds().Dx(), 1)
	assert.InDelta(t, 120, pages[1].Image.Bounds().Dx(), 1)
}

func TestSplitInvalidPage(t *testing.T) {
	p := newTestPipeline(t)
	doc := composeDoc(t, p, 2)

	_, errs := runAll(t, p, &transform.PdfSplit{File: doc, PageSelection: []int{3}})
	assert.Equal(t, transform.KindInvalidPageSelection, transform.KindOf(errs[0]))
}

func TestExtractImages(t *testing.T) {
	p := newTestPipeline(t)
	doc := composeDoc(t, p, 3)

	results, errs := runAll(t, p, &transform.PdfExtractImages{File: doc})
	require.NoError(t, errs[0])
	require.Len(t, results, 4)

	assert.Equal(t, "doc-page-1.png", results[0].OutputName)
	assert.Equal(t, "doc-page-3.png", results[2].OutputName)
	assert.Equal(t, "doc-pages.json", results[3].OutputName)

	var manifest struct {
		Pages []pageEntry `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(results[3].Output, &manifest))
	require.Len(t, manifest.Pages, 3)
	assert.Equal(t, "doc-page-2.png", manifest.Pages[1].File)
}

func TestSplitComposeRoundTrip(t *testing.T) {
	p := newTestPipeline(t)
	originals := []transform.InputFile{pngFile(t, "a.png", 90, 120), pngFile(t, "b.png", 120, 90)}

	composed, errs := runAll(t, p, &transform.PdfCompose{Files: originals})
	require.NoError(t, errs[0])
	doc := transform.InputFile{Name: "combined.pdf", MimeType: "application/pdf", Data: composed[0].Output}

	split, errs := runAll(t, p, &transform.PdfSplit{File: doc, PageSelection: []int{1, 2}})
	require.NoError(t, errs[0])
	part := transform.InputFile{Name: "part.pdf", MimeType: "application/pdf", Data: split[0].Output}

	extracted, errs := runAll(t, p, &transform.PdfExtractImages{File: part, Format: transform.FormatPNG})
	require.NoError(t, errs[0])
	require.Len(t, extracted, 3)

	for i, original := range originals {
		want := testutil.Decode(t, original.Data)
		got := testutil.Decode(t, extracted[i].Output)
		assert.Less(t, testutil.MeanAbsDiff(want, got), 10.0, "page %d drifted", i+1)
	}

	recomposed, errs := runAll(t, p, &transform.PdfCompose{Files: []transform.InputFile{
		{Name: extracted[0].OutputName, MimeType: extracted[0].MimeType, Data: extracted[0].Output},
		{Name: extracted[1].OutputName, MimeType: extracted[1].MimeType, Data: extracted[1].Output},
	}})
	require.NoError(t, errs[0])

	n, err := p.pdfs.PageCount(recomposed[0].Output)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCompressPDF(t *testing.T) {
	p := newTestPipeline(t)
	composed, errs := runAll(t, p, &transform.PdfCompose{Files: []transform.InputFile{
		jpegFile(t, "a.jpg", 120, 160),
		jpegFile(t, "b.jpg", 160, 120),
	}})
	require.NoError(t, errs[0])
	doc := transform.InputFile{Name: "scan.pdf", MimeType: "application/pdf", Data: composed[0].Output}
	target := doc.Size() / 2

	results, errs := runAll(t, p, &transform.CompressForLimit{TargetMaxBytes: target, Files: []transform.InputFile{doc}})
	require.NoError(t, errs[0])

	r := results[0]
	assert.False(t, r.HasWarning(transform.WarnBudgetUnreachable))
	assert.Equal(t, "application/pdf", r.MimeType)
	assert.LessOrEqual(t, r.FinalSize, Budget(target, 0.95))

	n, err := p.pdfs.PageCount(r.Output)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
