package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"fileforge/internal/codec"
	"fileforge/internal/common"
	"fileforge/internal/config"
	"fileforge/internal/domain/transform"
	"fileforge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := config.Default()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.RasterDPI = 72
	return New(cfg, codec.NewImageCodec(cfg.Logger), codec.NewPDFCodec(cfg.Logger), nil)
}

// runAll executes every planned task sequentially.
func runAll(t *testing.T, p *Pipeline, req transform.OperationRequest) ([]transform.JobResult, []error) {
	t.Helper()
	tasks, err := p.Plan(req)
	require.NoError(t, err)

	var results []transform.JobResult
	var errs []error
	for _, task := range tasks {
		out, err := task.Run(context.Background(), func(transform.JobState) {})
		results = append(results, out...)
		errs = append(errs, err)
	}
	return results, errs
}

func jpegFile(t *testing.T, name string, w, h int) transform.InputFile {
	return transform.InputFile{Name: name, MimeType: "image/jpeg", Data: testutil.JPEG(t, testutil.Noise(w, h, 3), 95)}
}

func pngFile(t *testing.T, name string, w, h int) transform.InputFile {
	return transform.InputFile{Name: name, MimeType: "image/png", Data: testutil.PNG(t, testutil.Gradient(w, h))}
}

func TestBudget(t *testing.T) {
	assert.Equal(t, int64(7969177), Budget(8*1024*1024, 0.95))
}

func TestCompressFitsBudget(t *testing.T) {
	p := newTestPipeline(t)
	file := jpegFile(t, "photo.jpg", 256, 256)
	target := int64(8000)

	results, errs := runAll(t, p, &transform.CompressForLimit{TargetMaxBytes: target, Files: []transform.InputFile{file}})
	require.NoError(t, errs[0])
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, transform.StatusSuccess, r.Status)
	assert.Equal(t, "photo.jpg", r.OutputName)
	assert.Equal(t, "image/jpeg", r.MimeType)
	assert.LessOrEqual(t, r.FinalSize, Budget(target, 0.95))
	assert.False(t, r.HasWarning(transform.WarnBudgetUnreachable))
	assert.Equal(t, file.Size(), r.OriginalSize)
	testutil.Decode(t, r.Output)
}

func TestCompressKeepsFileThatAlreadyFits(t *testing.T) {
	p := newTestPipeline(t)
	file := jpegFile(t, "small.jpg", 16, 16)

	results, errs := runAll(t, p, &transform.CompressForLimit{TargetMaxBytes: 1 << 20, Files: []transform.InputFile{file}})
	require.NoError(t, errs[0])

	assert.True(t, results[0].HasWarning(transform.WarnKeptOriginal))
	assert.Equal(t, file.Data, results[0].Output)
}

func TestCompressBudgetUnreachable(t *testing.T) {
	p := newTestPipeline(t)
	file := jpegFile(t, "photo.jpg", 64, 64)

	results, errs := runAll(t, p, &transform.CompressForLimit{TargetMaxBytes: 10, Files: []transform.InputFile{file}})
	require.NoError(t, errs[0])

	r := results[0]
	assert.Equal(t, transform.StatusSuccess, r.Status)
	assert.True(t, r.HasWarning(transform.WarnBudgetUnreachable))
	assert.Greater(t, r.FinalSize, int64(10))
	assert.Less(t, r.FinalSize, file.Size())
}

func TestCompressPNGDownscales(t *testing.T) {
	p := newTestPipeline(t)
	file := transform.InputFile{Name: "noise.png", MimeType: "image/png", Data: testutil.PNG(t, testutil.Noise(64, 64, 9))}
	// Roughly half the pixels of the source.
	target := file.Size() / 2

	results, errs := runAll(t, p, &transform.CompressForLimit{TargetMaxBytes: target, Files: []transform.InputFile{file}})
	require.NoError(t, errs[0])

	r := results[0]
	assert.Equal(t, "image/png", r.MimeType)
	assert.Less(t, r.Width, 64)
	assert.LessOrEqual(t, r.FinalSize, Budget(target, 0.95))
}

func TestCompressCorruptFails(t *testing.T) {
	p := newTestPipeline(t)
	file := transform.InputFile{Name: "broken.jpg", MimeType: "image/jpeg", Data: testutil.CorruptJPEG()}

	_, errs := runAll(t, p, &transform.CompressForLimit{TargetMaxBytes: 10, Files: []transform.InputFile{file}})
	assert.Equal(t, transform.KindCorruptData, transform.KindOf(errs[0]))
}

func TestConvertFlattensTransparency(t *testing.T) {
	p := newTestPipeline(t)
	file := transform.InputFile{Name: "logo.png", MimeType: "image/png", Data: testutil.PNG(t, testutil.TransparentCorner(64, 64))}

	results, errs := runAll(t, p, &transform.ConvertFormat{TargetFormat: transform.FormatJPEG, Files: []transform.InputFile{file}})
	require.NoError(t, errs[0])

	r := results[0]
	assert.Equal(t, "logo.jpg", r.OutputName)
	assert.True(t, r.HasWarning(transform.WarnTransparencyFlattened))
	assert.False(t, codec.HasAlpha(testutil.Decode(t, r.Output)))
}

func TestConvertOpaqueHasNoWarning(t *testing.T) {
	p := newTestPipeline(t)

	results, errs := runAll(t, p, &transform.ConvertFormat{TargetFormat: transform.FormatWebP, Files: []transform.InputFile{pngFile(t, "a.png", 32, 32)}})
	require.NoError(t, errs[0])

	assert.Empty(t, results[0].Warnings)
	assert.Equal(t, "a.webp", results[0].OutputName)
	assert.Equal(t, "image/webp", results[0].MimeType)
}

func TestConvertRejectsPDFSource(t *testing.T) {
	p := newTestPipeline(t)
	doc := composeDoc(t, p, 2)

	_, errs := runAll(t, p, &transform.ConvertFormat{TargetFormat: transform.FormatPNG, Files: []transform.InputFile{doc}})
	assert.True(t, errors.Is(errs[0], common.ErrUnsupportedFormat))
}

func TestOptimizeCapsWidth(t *testing.T) {
	p := newTestPipeline(t)

	results, errs := runAll(t, p, &transform.OptimizeForWeb{
		Files:    []transform.InputFile{pngFile(t, "hero.png", 200, 100)},
		MaxWidth: 100,
		Preset:   transform.PresetBalanced,
	})
	require.NoError(t, errs[0])

	r := results[0]
	assert.Equal(t, "hero.webp", r.OutputName)
	assert.Equal(t, 100, r.Width)
	assert.Equal(t, 50, r.Height)
	assert.Equal(t, 80, r.Params.Quality)
}

func TestOptimizeKeepsSmallerOriginal(t *testing.T) {
	p := newTestPipeline(t)
	file := transform.InputFile{Name: "tiny.jpg", MimeType: "image/jpeg", Data: testutil.JPEG(t, testutil.Noise(32, 32, 1), 5)}

	results, errs := runAll(t, p, &transform.OptimizeForWeb{Files: []transform.InputFile{file}, Format: transform.FormatJPEG, Preset: transform.PresetQuality})
	require.NoError(t, errs[0])

	assert.True(t, results[0].HasWarning(transform.WarnKeptOriginal))
	assert.Equal(t, file.Data, results[0].Output)
}

func TestIconSetUpscaleWarning(t *testing.T) {
	p := newTestPipeline(t)

	results, errs := runAll(t, p, &transform.GenerateIconSet{
		File:      pngFile(t, "logo.png", 64, 64),
		Sizes:     []int{512, 16, 32},
		Platforms: []transform.Platform{transform.PlatformWeb},
	})
	require.NoError(t, errs[0])
	require.Len(t, results, 5)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.OutputName
	}
	assert.Equal(t, []string{
		"web/favicon-16x16.png",
		"web/favicon-32x32.png",
		"web/icon-512x512.png",
		"web/site.webmanifest",
		"web/head-snippet.html",
	}, names)

	for _, r := range results[:3] {
		assert.Equal(t, r.Width == 512, r.HasWarning(transform.WarnUpscale), r.OutputName)
		img := testutil.Decode(t, r.Output)
		assert.Equal(t, r.Width, img.Bounds().Dx())
		assert.Equal(t, r.Width, img.Bounds().Dy())
	}

	var manifest struct {
		Name  string    `json:"name"`
		Icons []webIcon `json:"icons"`
	}
	require.NoError(t, json.Unmarshal(results[3].Output, &manifest))
	assert.Equal(t, "logo", manifest.Name)
	require.Len(t, manifest.Icons, 1)
	assert.Equal(t, "/icon-512x512.png", manifest.Icons[0].Src)
	assert.Contains(t, string(results[4].Output), `sizes="16x16"`)
}

func TestIconSetPresetsAndSquaring(t *testing.T) {
	p := newTestPipeline(t)

	results, errs := runAll(t, p, &transform.GenerateIconSet{
		File:      pngFile(t, "wide.png", 400, 200),
		Platforms: []transform.Platform{transform.PlatformIOS, transform.PlatformAndroid},
	})
	require.NoError(t, errs[0])
	require.Len(t, results, 6)

	assert.Equal(t, "ios/apple-touch-icon.png", results[0].OutputName)
	assert.Equal(t, "android/mipmap-mdpi/ic_launcher.png", results[1].OutputName)
	assert.Equal(t, "android/mipmap-xxxhdpi/ic_launcher.png", results[5].OutputName)
	for _, r := range results {
		assert.Empty(t, r.Warnings)
	}
	assert.True(t, codec.HasAlpha(testutil.Decode(t, results[0].Output)))
}

func TestIconSetWideSourceUpscale(t *testing.T) {
	p := newTestPipeline(t)

	results, errs := runAll(t, p, &transform.GenerateIconSet{
		File:      pngFile(t, "wide.png", 100, 50),
		Sizes:     []int{64, 128},
		Platforms: []transform.Platform{transform.PlatformAndroid},
	})
	require.NoError(t, errs[0])
	require.Len(t, results, 2)

	assert.False(t, results[0].HasWarning(transform.WarnUpscale))
	assert.True(t, results[1].HasWarning(transform.WarnUpscale))
}

func TestIconSetHeadSnippetLinksGeneratedTouchIcons(t *testing.T) {
	p := newTestPipeline(t)

	results, errs := runAll(t, p, &transform.GenerateIconSet{
		File:      pngFile(t, "logo.png", 200, 200),
		Sizes:     []int{152},
		Platforms: []transform.Platform{transform.PlatformWeb, transform.PlatformIOS},
	})
	require.NoError(t, errs[0])

	var head string
	var names []string
	for _, r := range results {
		names = append(names, r.OutputName)
		if r.OutputName == "web/head-snippet.html" {
			head = string(r.Output)
		}
	}
	assert.Contains(t, names, "ios/apple-touch-icon-152x152.png")
	assert.Contains(t, head, `<link rel="apple-touch-icon" sizes="152x152" href="/apple-touch-icon-152x152.png">`)
	assert.NotContains(t, head, `href="/apple-touch-icon.png"`)
}

func TestIconPath(t *testing.T) {
	tests := []struct {
		platform transform.Platform
		size     int
		want     string
	}{
		{transform.PlatformWeb, 16, "web/favicon-16x16.png"},
		{transform.PlatformWeb, 192, "web/icon-192x192.png"},
		{transform.PlatformIOS, 180, "ios/apple-touch-icon.png"},
		{transform.PlatformIOS, 152, "ios/apple-touch-icon-152x152.png"},
		{transform.PlatformAndroid, 96, "android/mipmap-xhdpi/ic_launcher.png"},
		{transform.PlatformAndroid, 100, "android/ic_launcher-100x100.png"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, iconPath(tt.platform, tt.size))
		})
	}
}

func TestPlanOrderAndNames(t *testing.T) {
	p := newTestPipeline(t)
	files := []transform.InputFile{pngFile(t, "a.png", 4, 4), pngFile(t, "b.png", 4, 4)}

	tasks, err := p.Plan(&transform.ConvertFormat{TargetFormat: transform.FormatJPEG, Files: files})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a.png", tasks[0].Name)
	assert.Equal(t, 1, tasks[1].Index)

	tasks, err = p.Plan(&transform.PdfCompose{Files: files})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "combined.pdf", tasks[0].Name)
}

func TestTaskHonoursCancellation(t *testing.T) {
	p := newTestPipeline(t)
	tasks, err := p.Plan(&transform.ConvertFormat{TargetFormat: transform.FormatJPEG, Files: []transform.InputFile{pngFile(t, "a.png", 8, 8)}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tasks[0].Run(ctx, func(transform.JobState) {})
	assert.Equal(t, transform.KindCancelled, transform.KindOf(err))
}
