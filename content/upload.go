package content

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// SubDir is the upload destination classifier understood by the service.
type SubDir string

const (
	SubDirImages SubDir = "images"
	SubDirVideos SubDir = "videos"
	SubDirAudio  SubDir = "audio"
	SubDirLogos  SubDir = "logos"
)

// MaxVideoSize caps video uploads.
const MaxVideoSize = 100 << 20

var (
	// ErrEmptyFile is returned for an upload with no bytes.
	ErrEmptyFile = errors.New("file is empty")
	// ErrUnsupportedFile is returned when the file kind does not match the field.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when a video exceeds MaxVideoSize.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)

// File is a binary chosen for upload.
type File struct {
	Name string
	MIME string
	Data []byte
}

// DataURL encodes the file as an RFC 2397 data URL.
func (f File) DataURL() string {
	mime := f.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// IsImage reports whether the MIME type is an image type.
func (f File) IsImage() bool { return strings.HasPrefix(f.MIME, "image/") }

// IsVideo reports whether the MIME type is a video type.
func (f File) IsVideo() bool { return strings.HasPrefix(f.MIME, "video/") }

// ClassifySubDir picks the destination directory from a MIME type.
func ClassifySubDir(mime string) SubDir {
	switch {
	case strings.HasPrefix(mime, "video/"):
		return SubDirVideos
	case strings.HasPrefix(mime, "audio/"):
		return SubDirAudio
	default:
		return SubDirImages
	}
}

// Uploader sends an encoded file to the service and returns its permanent URL.
type Uploader interface {
	Upload(ctx context.Context, dataURL, fileName string, dir SubDir) (string, error)
}

// UploadFile validates f for dir, encodes it and uploads it. Only the
// returned URL ever enters the content model.
func UploadFile(ctx context.Context, up Uploader, f File, dir SubDir) (string, error) {
	if len(f.Data) == 0 {
		return "", ErrEmptyFile
	}
	if dir == "" {
		dir = ClassifySubDir(f.MIME)
	}
	switch dir {
	case SubDirImages, SubDirLogos:
		if !f.IsImage() {
			return "", fmt.Errorf("%w: please select an image file", ErrUnsupportedFile)
		}
	case SubDirVideos:
		if !f.IsVideo() {
			return "", fmt.Errorf("%w: please select a video file", ErrUnsupportedFile)
		}
		if len(f.Data) > MaxVideoSize {
			return "", fmt.Errorf("%w: %.2f MB is over %d MB", ErrFileTooLarge,
				float64(len(f.Data))/(1<<20), MaxVideoSize>>20)
		}
	}
	return up.Upload(ctx, f.DataURL(), f.Name, dir)
}
