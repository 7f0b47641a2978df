package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"fileforge/internal/codec"
	"fileforge/internal/common"
	"fileforge/internal/domain/transform"
)

const opIcons = "icons"

// androidDensities maps launcher icon sizes onto mipmap buckets.
var androidDensities = map[int]string{
	48:  "mdpi",
	72:  "hdpi",
	96:  "xhdpi",
	144: "xxhdpi",
	192: "xxxhdpi",
}

// iconPath names one icon inside the archive.
func iconPath(platform transform.Platform, size int) string {
	switch platform {
	case transform.PlatformWeb:
		if size <= 64 {
			return fmt.Sprintf("web/favicon-%dx%d.png", size, size)
		}
		return fmt.Sprintf("web/icon-%dx%d.png", size, size)
	case transform.PlatformIOS:
		if size == 180 {
			return "ios/apple-touch-icon.png"
		}
		return fmt.Sprintf("ios/apple-touch-icon-%dx%d.png", size, size)
	case transform.PlatformAndroid:
		if density, ok := androidDensities[size]; ok {
			return fmt.Sprintf("android/mipmap-%s/ic_launcher.png", density)
		}
		return fmt.Sprintf("android/ic_launcher-%dx%d.png", size, size)
	}
	return fmt.Sprintf("%s/icon-%dx%d.png", platform, size, size)
}

// iconSizes returns the sorted, de-duplicated sizes for a platform.
func (p *Pipeline) iconSizes(req *transform.GenerateIconSet, platform transform.Platform) []int {
	sizes := req.Sizes
	if len(sizes) == 0 {
		sizes = p.cfg.Presets.IconSizes(platform)
	}
	seen := make(map[int]bool, len(sizes))
	out := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Ints(out)
	return out
}

type webIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// icons renders one source at every requested size for every platform.
// Non-square sources are centered on a transparent square first.
func (p *Pipeline) icons(ctx context.Context, file transform.InputFile, req *transform.GenerateIconSet, track transform.TrackFunc) ([]transform.JobResult, error) {
	track(transform.StateDecoding)

	asset, err := p.decodeImage(ctx, opIcons, file)
	if err != nil {
		return nil, err
	}
	// Non-square sources are padded, so content scales against the long side.
	side := max(asset.Width(), asset.Height())
	square := codec.FitSquare(asset.Image)

	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = transform.Platforms()
	}

	track(transform.StateEncoding)

	var results []transform.JobResult
	var webIcons, touchIcons []webIcon
	for _, platform := range platforms {
		for _, size := range p.iconSizes(req, platform) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			params := transform.EncodeParameters{Format: transform.FormatPNG, Lossless: true, Width: size, Height: size}
			data, err := p.images.Encode(square, params)
			if err != nil {
				return nil, common.NewProcessingError(opIcons, file.Name, err)
			}

			name := iconPath(platform, size)
			result := output(file, name, params, data, size, size)
			if size > side {
				result.Warnings = append(result.Warnings, transform.WarnUpscale)
			}
			results = append(results, result)

			switch platform {
			case transform.PlatformWeb:
				webIcons = append(webIcons, webIcon{
					Src:   "/" + strings.TrimPrefix(name, "web/"),
					Sizes: fmt.Sprintf("%dx%d", size, size),
					Type:  "image/png",
				})
			case transform.PlatformIOS:
				touchIcons = append(touchIcons, webIcon{
					Src:   "/" + strings.TrimPrefix(name, "ios/"),
					Sizes: fmt.Sprintf("%dx%d", size, size),
				})
			}
		}
	}

	if len(webIcons) > 0 {
		extras, err := webExtras(file, req.AppName, webIcons, touchIcons)
		if err != nil {
			return nil, common.NewProcessingError(opIcons, file.Name, err)
		}
		results = append(results, extras...)
	}

	p.logger.Info("Generated icon set", "file", file.Name, "platforms", len(platforms), "outputs", len(results))
	return results, nil
}

// webExtras builds the web manifest and the HTML head snippet. The snippet
// links only the touch icons that were generated.
func webExtras(file transform.InputFile, appName string, icons, touchIcons []webIcon) ([]transform.JobResult, error) {
	if appName == "" {
		appName = common.BaseName(file.Name)
	}

	manifestIcons := []webIcon{}
	var head strings.Builder
	for _, icon := range icons {
		if strings.Contains(icon.Src, "favicon-") {
			fmt.Fprintf(&head, "<link rel=\"icon\" type=\"image/png\" sizes=\"%s\" href=\"%s\">\n", icon.Sizes, icon.Src)
		} else {
			manifestIcons = append(manifestIcons, icon)
		}
	}
	for _, icon := range touchIcons {
		fmt.Fprintf(&head, "<link rel=\"apple-touch-icon\" sizes=\"%s\" href=\"%s\">\n", icon.Sizes, icon.Src)
	}
	head.WriteString("<link rel=\"manifest\" href=\"/site.webmanifest\">\n")

	manifest, err := json.MarshalIndent(map[string]any{
		"name":             appName,
		"short_name":       appName,
		"icons":            manifestIcons,
		"display":          "standalone",
		"theme_color":      "#ffffff",
		"background_color": "#ffffff",
	}, "", "  ")
	if err != nil {
		return nil, err
	}

	extra := func(name, mime string, data []byte) transform.JobResult {
		return transform.JobResult{
			SourceName:   file.Name,
			Status:       transform.StatusSuccess,
			OutputName:   name,
			MimeType:     mime,
			Output:       data,
			OriginalSize: file.Size(),
			FinalSize:    int64(len(data)),
		}
	}
	return []transform.JobResult{
		extra("web/site.webmanifest", "application/manifest+json", manifest),
		extra("web/head-snippet.html", "text/html", []byte(head.String())),
	}, nil
}
