package codec

import (
	"fmt"

	"fileforge/internal/common"
	"fileforge/internal/domain/transform"

	"github.com/gabriel-vasile/mimetype"
)

// Sniff detects the format from magic bytes and checks it against the
// declared mime type. An empty declared type trusts the content.
func Sniff(data []byte, declared string) (transform.Format, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", common.ErrCorruptData)
	}

	detected := mimetype.Detect(data)
	format, ok := transform.FormatFromMime(detected.String())
	if !ok {
		return "", fmt.Errorf("%w: detected %s", common.ErrUnsupportedFormat, detected.String())
	}

	if declared == "" || declared == "application/octet-stream" {
		return format, nil
	}
	want, ok := transform.FormatFromMime(declared)
	if !ok {
		return "", fmt.Errorf("%w: declared %s", common.ErrUnsupportedFormat, declared)
	}
	if want != format {
		return "", fmt.Errorf("%w: declared %s but content is %s", common.ErrCorruptData, declared, detected.String())
	}
	return format, nil
}
