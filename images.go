package churchsite

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/towngreen/churchsite/content"
)

const jpegQuality = 85

// readUpload turns a multipart file into a content.File. JPEG and PNG images
// wider or taller than maxSide are scaled down first; everything else is
// sent as chosen.
func readUpload(fh *multipart.FileHeader, maxSide int) (content.File, error) {
	src, err := fh.Open()
	if err != nil {
		return content.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return content.File{}, fmt.Errorf("read upload: %w", err)
	}
	f := content.File{
		Name: SlugifyFilename(fh.Filename),
		MIME: uploadMIME(fh, data),
		Data: data,
	}
	if f.MIME == "image/jpeg" || f.MIME == "image/png" {
		resized, err := shrinkImage(f.Data, f.MIME, maxSide)
		if err != nil {
			return content.File{}, err
		}
		f.Data = resized
	}
	return f, nil
}

// uploadMIME prefers the declared type, then the extension, then sniffing.
func uploadMIME(fh *multipart.FileHeader, data []byte) string {
	if ct, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type")); err == nil && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); ct != "" {
		ct, _, _ = strings.Cut(ct, ";")
		return ct
	}
	ct, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return ct
}

// shrinkImage scales data down so neither side exceeds maxSide, keeping its
// format. Images already small enough are returned untouched.
func shrinkImage(data []byte, mimeType string, maxSide int) ([]byte, error) {
	if maxSide <= 0 {
		return data, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	w, h := cfg.Width, cfg.Height
	if w <= maxSide && h <= maxSide {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if w >= h {
		w, h = maxSide, max(h*maxSide/w, 1)
	} else {
		w, h = max(w*maxSide/h, 1), maxSide
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if mimeType == "image/png" {
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
