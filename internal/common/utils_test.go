package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateUUID(t *testing.T) {
	uuid1 := GenerateUUID()
	uuid2 := GenerateUUID()

	if uuid1 == "" || uuid2 == "" {
		t.Error("Expected non-empty UUID")
	}

	if uuid1 == uuid2 {
		t.Error("Expected different UUIDs")
	}

	if _, err := uuid.Parse(uuid1); err != nil {
		t.Errorf("Generated UUID is not valid: %v", err)
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo"},
		{"dir/photo.final.png", "photo.final"},
		{"C:\\Users\\me\\scan.pdf", "scan"},
		{"noext", "noext"},
		{".hidden", ".hidden"},
		{"", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := BaseName(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReplaceExt(t *testing.T) {
	if got := ReplaceExt("holiday.png", ".jpg"); got != "holiday.jpg" {
		t.Errorf("Expected holiday.jpg, got %s", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(0, 1, 100) != 1 || Clamp(101, 1, 100) != 100 || Clamp(50, 1, 100) != 50 {
		t.Error("Clamp returned a value outside the expected range")
	}
}

func TestProcessingErrorUnwrap(t *testing.T) {
	err := NewProcessingError("decode", "a.jpg", fmt.Errorf("bad marker: %w", ErrCorruptData))

	if !errors.Is(err, ErrCorruptData) {
		t.Error("Expected error to unwrap to ErrCorruptData")
	}

	want := "decode failed for file a.jpg: bad marker: corrupt or unreadable data"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestUserMessage(t *testing.T) {
	if UserMessage(nil) != "" {
		t.Error("Expected empty message for nil error")
	}
	msg := UserMessage(NewRequestError("files", ErrTooManyFiles))
	if msg != "Too many files. Maximum is 10 files." {
		t.Errorf("Unexpected message %q", msg)
	}
}
