package api

import (
	"context"
	"net/http"

	"github.com/towngreen/churchsite/content"
)

var (
	_ content.Backend  = (*Client)(nil)
	_ content.Uploader = (*Client)(nil)
)

type upsertRequest struct {
	Section string       `json:"section_name"`
	Key     string       `json:"content_key"`
	Value   string       `json:"content_value"`
	Type    content.Type `json:"content_type"`
	Order   int          `json:"display_order"`
}

type deleteRequest struct {
	ID    content.ID `json:"content_id"`
	Value string     `json:"content_value"`
}

type uploadRequest struct {
	File     string         `json:"file"`
	FileName string         `json:"fileName"`
	SubDir   content.SubDir `json:"subDir"`
}

// FetchContent returns the whole content dictionary.
func (c *Client) FetchContent(ctx context.Context) (content.Snapshot, error) {
	const op = "fetch content"
	env, err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/home/content"})
	if err != nil {
		return nil, err
	}
	snap, err := decodeData[content.Snapshot](op, env)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = content.Snapshot{}
	}
	return snap, nil
}

// UpsertContent creates or replaces one entry. The returned id is empty when
// the service did not report one.
func (c *Client) UpsertContent(ctx context.Context, u content.Upsert) (content.ID, error) {
	const op = "save content"
	typ := u.Type
	if typ == "" {
		typ = content.TypeText
	}
	env, err := c.do(ctx, call{op: op, method: http.MethodPost, path: "/home/content", body: upsertRequest{
		Section: u.Section, Key: u.Key, Value: u.Value, Type: typ, Order: u.Order,
	}})
	if err != nil {
		return "", err
	}
	data, err := decodeData[struct {
		ID content.ID `json:"id"`
	}](op, env)
	if err != nil {
		return "", err
	}
	return data.ID, nil
}

// DeleteContent removes the entry with id.
func (c *Client) DeleteContent(ctx context.Context, id content.ID, value string) error {
	_, err := c.do(ctx, call{op: "delete content", method: http.MethodPost, path: "/home/content/delete",
		body: deleteRequest{ID: id, Value: value}})
	return err
}

// Upload sends a data URL and returns the stored file's URL.
func (c *Client) Upload(ctx context.Context, dataURL, fileName string, dir content.SubDir) (string, error) {
	const op = "upload file"
	if dir == "" {
		dir = content.SubDirImages
	}
	env, err := c.do(ctx, call{op: op, method: http.MethodPost, path: "/home/upload",
		body: uploadRequest{File: dataURL, FileName: fileName, SubDir: dir}})
	if err != nil {
		return "", err
	}
	if env.URL == "" {
		return "", &Error{Op: op, Kind: KindDecode, Message: "Upload succeeded but no URL was returned"}
	}
	return env.URL, nil
}
