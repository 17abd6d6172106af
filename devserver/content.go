package devserver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"

	"github.com/towngreen/churchsite/content"
)

type upsertRequest struct {
	Section string `json:"section_name" validate:"required"`
	Key     string `json:"content_key" validate:"required"`
	Value   string `json:"content_value"`
	Type    string `json:"content_type" validate:"omitempty,oneof=text image json"`
	Order   int    `json:"display_order" validate:"gte=0"`
}

type deleteRequest struct {
	ID    content.ID `json:"content_id"`
	Value string     `json:"content_value"`
}

type uploadRequest struct {
	File     string `json:"file" validate:"required"`
	FileName string `json:"fileName" validate:"required"`
	SubDir   string `json:"subDir" validate:"omitempty,oneof=images videos audio logos"`
}

func (s *Server) handleGetContent(c echo.Context) error {
	snap, err := s.Store.Content(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, snap)
}

func (s *Server) handleUpsertContent(c echo.Context) error {
	var req upsertRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "section_name and content_key are required")
	}
	id, err := s.Store.UpsertContent(c.Request().Context(), content.Upsert{
		Section: req.Section,
		Key:     req.Key,
		Value:   req.Value,
		Type:    content.Type(req.Type),
		Order:   req.Order,
	})
	if err != nil {
		return err
	}
	s.logger.Debug("content saved", "section", req.Section, "key", req.Key, "id", id)
	return ok(c, map[string]content.ID{"id": id})
}

func (s *Server) handleDeleteContent(c echo.Context) error {
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.ID == "" {
		return fail(c, http.StatusBadRequest, "content_id is required")
	}
	err := s.Store.DeleteContent(c.Request().Context(), req.ID)
	if errors.Is(err, ErrNotFound) {
		return fail(c, http.StatusNotFound, "Content not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply{Success: true, Message: "Content deleted"})
}

func (s *Server) handleUpload(c echo.Context) error {
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "file and fileName are required")
	}
	if req.SubDir == "" {
		req.SubDir = string(content.SubDirImages)
	}
	mimeType, data, err := decodeDataURL(req.File)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if req.SubDir == string(content.SubDirVideos) && len(data) > content.MaxVideoSize {
		return fail(c, http.StatusRequestEntityTooLarge, "Video exceeds the maximum allowed size")
	}

	name := storedName(req.FileName, mimeType)
	dir := filepath.Join(s.uploadRoot(), req.SubDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return err
	}
	url := s.publicURL(c) + path.Join("/uploads", req.SubDir, name)
	s.logger.Info("file uploaded", "name", name, "dir", req.SubDir, "bytes", len(data))
	return c.JSON(http.StatusOK, reply{Success: true, URL: url, Message: "File uploaded successfully"})
}

func (s *Server) publicURL(c echo.Context) string {
	if s.Config.PublicURL != "" {
		return s.Config.PublicURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

// decodeDataURL parses data:<mime>;base64,<payload>.
func decodeDataURL(raw string) (string, []byte, error) {
	rest, found := strings.CutPrefix(raw, "data:")
	if !found {
		return "", nil, errors.New("file must be a data URL")
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, errors.New("malformed data URL")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, errors.New("data URL must be base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, errors.New("file is empty")
	}
	return mimeType, data, nil
}

var extByMIME = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"audio/mpeg":      ".mp3",
	"audio/ogg":       ".ogg",
	"audio/wav":       ".wav",
}

// storedName slugs the client's file name and adds a short random suffix so
// repeated uploads never overwrite each other.
func storedName(fileName, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	base := slug.Make(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
	if base == "" {
		base = "file"
	}
	if ext == "" {
		ext = extByMIME[mimeType]
	}
	return base + "-" + uuid.NewString()[:8] + ext
}

func galleryTarget(itemURL string) string { return "gallery:" + itemURL }

func (s *Server) handleGalleryReactions(c echo.Context) error {
	item := c.QueryParam("item_url")
	if item == "" {
		return fail(c, http.StatusBadRequest, "item_url is required")
	}
	r, err := s.Store.Reactions(c.Request().Context(), galleryTarget(item))
	if err != nil {
		return err
	}
	return ok(c, r)
}

type itemRequest struct {
	ItemURL     string `json:"item_url" validate:"required"`
	CommentText string `json:"comment_text"`
	AuthorName  string `json:"author_name"`
}

func (s *Server) handleGalleryReact(kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req itemRequest
		if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
			return fail(c, http.StatusBadRequest, "item_url is required")
		}
		r, err := s.Store.React(c.Request().Context(), galleryTarget(req.ItemURL), kind)
		if err != nil {
			return err
		}
		return ok(c, r)
	}
}

func (s *Server) handleGalleryComments(c echo.Context) error {
	item := c.QueryParam("item_url")
	if item == "" {
		return fail(c, http.StatusBadRequest, "item_url is required")
	}
	list, err := s.Store.Comments(c.Request().Context(), galleryTarget(item))
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (s *Server) handleGalleryAddComment(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return fail(c, http.StatusBadRequest, "item_url is required")
	}
	if strings.TrimSpace(req.CommentText) == "" {
		return fail(c, http.StatusBadRequest, "comment_text is required")
	}
	cm, err := s.Store.AddComment(c.Request().Context(), galleryTarget(req.ItemURL), authorOr(req.AuthorName), req.CommentText)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, reply{Success: true, Data: cm})
}

func authorOr(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return "Anonymous"
}
