package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/towngreen/churchsite"
	"github.com/towngreen/churchsite/content"
)

func newContentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Read and edit site content",
	}
	cmd.AddCommand(
		newContentDumpCommand(),
		newContentGetCommand(),
		newContentSetCommand(),
		newContentDeleteCommand(),
		newContentListCommand(),
		newContentUploadCommand(),
	)
	return cmd
}

// loadStore returns a store loaded from the service.
func loadStore(cmd *cobra.Command, requireToken bool) (*content.Store, error) {
	client, err := newClient(cmd, requireToken)
	if err != nil {
		return nil, err
	}
	store := content.NewStore(client, content.WithLogger(slog.Default()))
	if err := store.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return store, nil
}

func newContentDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [section...]",
		Short: "Print stored content as a table, or as JSON with --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd, false)
			if err != nil {
				return err
			}
			sections := args
			if len(sections) == 0 {
				sections = store.Sections()
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				out := content.Snapshot{}
				for _, s := range sections {
					out[s] = store.Section(s)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			width, _ := cmd.Flags().GetInt("width")
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Section", "Key", "Type", "Order", "ID", "Value"})
			t.SetColumnConfigs([]table.ColumnConfig{{Name: "Value", WidthMax: width}})
			for _, s := range sections {
				sec := store.Section(s)
				for _, k := range sortedKeys(sec) {
					e := sec[k]
					t.AppendRow(table.Row{s, k, e.Type, e.Order, e.ID, text.Trim(oneLine(e.Value), width)})
				}
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print JSON instead of a table")
	cmd.Flags().Int("width", 60, "maximum width of the value column")
	return cmd
}

func newContentGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <section> <key>",
		Short: "Print one value, or its page default when nothing is stored",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd, false)
			if err != nil {
				return err
			}
			def, _ := cmd.Flags().GetString("default")
			if !cmd.Flags().Changed("default") {
				def = manifestDefault(args[0], args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Get(args[0], args[1], def))
			return nil
		},
	}
	cmd.Flags().String("default", "", "value printed when nothing is stored")
	return cmd
}

func newContentSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <section> <key> <value|->",
		Short: "Save one value; - reads it from stdin",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := args[2]
			if value == "-" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				value = strings.TrimRight(string(raw), "\n")
			}
			store, err := loadStore(cmd, true)
			if err != nil {
				return err
			}
			typ, order := fieldType(args[0], args[1])
			if cmd.Flags().Changed("type") {
				t, _ := cmd.Flags().GetString("type")
				typ = content.Type(t)
			}
			if cmd.Flags().Changed("order") {
				order, _ = cmd.Flags().GetInt("order")
			}
			if typ == content.TypeJSON && !json.Valid([]byte(value)) {
				return errors.New("value is not valid JSON")
			}
			e, err := store.Save(cmd.Context(), args[0], args[1], value, typ, order)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s.%s (id %s)\n", args[0], args[1], e.ID)
			return nil
		},
	}
	cmd.Flags().String("type", "text", "entry type: text, image or json")
	cmd.Flags().Int("order", 0, "display order")
	return cmd
}

func newContentDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <section> <key>",
		Short: "Delete one stored value so the page shows its default",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd, true)
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s.%s\n", args[0], args[1])
			return nil
		},
	}
}

func newContentListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Work with list fields such as galleries and testimonies",
	}
	show := &cobra.Command{
		Use:   "show <section> <key>",
		Short: "Print the items of a list field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd, false)
			if err != nil {
				return err
			}
			printItems(cmd, content.NewList[json.RawMessage](store, args[0], args[1]).Items())
			return nil
		},
	}
	appendCmd := &cobra.Command{
		Use:   "append <section> <key> <json>",
		Short: "Append one JSON item to a list field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(args[2])) {
				return errors.New("item is not valid JSON")
			}
			store, err := loadStore(cmd, true)
			if err != nil {
				return err
			}
			items, err := content.NewList[json.RawMessage](store, args[0], args[1]).Append(cmd.Context(), json.RawMessage(args[2]))
			if err != nil {
				return err
			}
			printItems(cmd, items)
			return nil
		},
	}
	remove := &cobra.Command{
		Use:   "remove <section> <key> <index>",
		Short: "Remove the item at index from a list field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			store, err := loadStore(cmd, true)
			if err != nil {
				return err
			}
			items, err := content.NewList[json.RawMessage](store, args[0], args[1]).RemoveAt(cmd.Context(), i)
			if err != nil {
				return err
			}
			printItems(cmd, items)
			return nil
		},
	}
	cmd.AddCommand(show, appendCmd, remove)
	return cmd
}

func newContentUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and print its URL, optionally saving it to a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFile(cmd, args[0])
			if err != nil {
				return err
			}
			dir := content.ClassifySubDir(f.MIME)
			if d, _ := cmd.Flags().GetString("dir"); d != "" {
				dir = content.SubDir(d)
			}
			client, err := newClient(cmd, true)
			if err != nil {
				return err
			}
			url, err := content.UploadFile(cmd.Context(), client, f, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)

			field, _ := cmd.Flags().GetString("field")
			if field == "" {
				return nil
			}
			addr, ok := content.ParseAddress(field)
			if !ok {
				return fmt.Errorf("field %q is not section.key", field)
			}
			store := content.NewStore(client, content.WithLogger(slog.Default()))
			_, order := fieldType(addr.Section, addr.Key)
			if _, err := store.Save(cmd.Context(), addr.Section, addr.Key, url, content.TypeImage, order); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", addr)
			return nil
		},
	}
	cmd.Flags().String("dir", "", "upload directory: images, videos, audio or logos (default from the file type)")
	cmd.Flags().String("field", "", "section.key to save the uploaded URL to")
	return cmd
}

// readFile reads path into memory, showing progress for large files.
func readFile(cmd *cobra.Command, path string) (content.File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return content.File{}, err
	}
	defer fh.Close()
	info, err := fh.Stat()
	if err != nil {
		return content.File{}, err
	}

	var buf bytes.Buffer
	bar := progressbar.DefaultBytes(info.Size(), "reading "+filepath.Base(path))
	if _, err := io.Copy(io.MultiWriter(&buf, bar), fh); err != nil {
		return content.File{}, err
	}
	_ = bar.Finish()

	data := buf.Bytes()
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return content.File{Name: churchsite.SlugifyFilename(path), MIME: mimeType, Data: data}, nil
}

func printItems(cmd *cobra.Command, items []json.RawMessage) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Item"})
	for i, it := range items {
		t.AppendRow(table.Row{i, string(it)})
	}
	t.Render()
}

// manifestDefault is the declared default of (section, key) on any page.
func manifestDefault(section, key string) string {
	for _, m := range churchsite.Editors() {
		if f, ok := m.Field(section, key); ok {
			return f.Default
		}
	}
	return ""
}

// fieldType is the entry type and order a page declares for (section, key).
func fieldType(section, key string) (content.Type, int) {
	for _, m := range churchsite.Editors() {
		if f, ok := m.Field(section, key); ok {
			return f.ContentType(), f.Order
		}
	}
	return content.TypeText, 0
}

func sortedKeys(sec content.Section) []string {
	keys := make([]string, 0, len(sec))
	for k := range sec {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
