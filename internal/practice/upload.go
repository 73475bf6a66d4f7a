package practice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/omergehad405/EduMaster/internal/failure"
)

// DefaultMaxUploadBytes caps study files sent for quiz generation.
const DefaultMaxUploadBytes int64 = 10 << 20

// AcceptedExtensions lists the file types the server generates quizzes from.
var AcceptedExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".txt"}

// contentTypes are the detected types allowed for each extension.
var contentTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".txt":  {"text/plain"},
}

// Upload is a local study file checked for upload.
type Upload struct {
	Path string
	Name string
	Size int64
	MIME string
}

// HumanSize returns the file size for display.
func (u Upload) HumanSize() string {
	return humanize.Bytes(uint64(u.Size))
}

// UploadError explains why a file cannot be uploaded.
type UploadError struct {
	Path   string
	Reason string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("cannot upload %s: %s", filepath.Base(e.Path), e.Reason)
}

func (e *UploadError) Is(target error) bool { return target == failure.ErrValidation }

func (e *UploadError) UserMessage() string {
	return fmt.Sprintf("%s: %s", filepath.Base(e.Path), e.Reason)
}

// Inspect checks that path names a regular file of an accepted type no
// larger than maxBytes. A non-positive maxBytes uses DefaultMaxUploadBytes.
func Inspect(path string, maxBytes int64) (Upload, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if strings.TrimSpace(path) == "" {
		return Upload{}, &UploadError{Path: path, Reason: "no file selected"}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Upload{}, &UploadError{Path: path, Reason: "file does not exist"}
		}
		return Upload{}, fmt.Errorf("stat upload: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Upload{}, &UploadError{Path: path, Reason: "not a regular file"}
	}
	if info.Size() == 0 {
		return Upload{}, &UploadError{Path: path, Reason: "file is empty"}
	}
	if info.Size() > maxBytes {
		return Upload{}, &UploadError{
			Path:   path,
			Reason: fmt.Sprintf("file is %s, the limit is %s", humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(maxBytes))),
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(AcceptedExtensions, ext) {
		return Upload{}, &UploadError{
			Path:   path,
			Reason: "unsupported file type (accepted: " + strings.Join(AcceptedExtensions, ", ") + ")",
		}
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("detect upload type: %w", err)
	}
	if !matchesType(mt, contentTypes[ext]) {
		return Upload{}, &UploadError{
			Path:   path,
			Reason: fmt.Sprintf("content looks like %s, not %s", mt.String(), ext),
		}
	}

	return Upload{
		Path: path,
		Name: filepath.Base(path),
		Size: info.Size(),
		MIME: mt.String(),
	}, nil
}

func matchesType(mt *mimetype.MIME, allowed []string) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, want := range allowed {
			if m.Is(want) {
				return true
			}
		}
	}
	return false
}
