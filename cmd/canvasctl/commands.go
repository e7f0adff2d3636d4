package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	cli "github.com/urfave/cli/v3"

	"mailcanvas/internal/catalog"
	"mailcanvas/internal/facade"
	"mailcanvas/internal/htmlgen"
	"mailcanvas/internal/models"
	"mailcanvas/internal/slug"
	"mailcanvas/web"
)

// canvasFile is the accepted input: a bare element list, a draft, or a
// saved template record.
type canvasFile struct {
	Name           string                 `json:"name"`
	Title          string                 `json:"title"`
	Styles         models.StyleSet        `json:"styles"`
	Elements       []models.Element       `json:"elements"`
	CanvasElements []models.StoredElement `json:"canvasElements"`
}

func parseCanvas(data []byte) (*canvasFile, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var els []models.Element
		if err := json.Unmarshal(data, &els); err != nil {
			return nil, fmt.Errorf("parsing element list: %w", err)
		}
		return &canvasFile{Elements: els}, nil
	}

	var f canvasFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing canvas: %w", err)
	}
	if len(f.Elements) == 0 && len(f.CanvasElements) > 0 {
		t := models.Template{CanvasElements: f.CanvasElements}
		f.Elements = t.Elements()
	}
	return &f, nil
}

// readSource reads the first argument, or STDIN when it is absent or "-".
func readSource(cmd *cli.Command) ([]byte, error) {
	src := cmd.Args().First()
	if src == "" || src == "-" {
		return io.ReadAll(cmd.Root().Reader)
	}
	return os.ReadFile(src)
}

// writeOutput writes data to the --output file, or STDOUT.
func writeOutput(cmd *cli.Command, data []byte) error {
	dst := cmd.String("output")
	if dst == "" || dst == "-" {
		_, err := cmd.Root().Writer.Write(data)
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	slog.Info("written", "file", dst, "bytes", len(data))
	return nil
}

func runRender(_ context.Context, cmd *cli.Command) error {
	data, err := readSource(cmd)
	if err != nil {
		return err
	}
	f, err := parseCanvas(data)
	if err != nil {
		return err
	}

	gen := htmlgen.New(!cmd.Bool("raw"))
	out := gen.Fragment(f.Elements)
	switch {
	case cmd.Bool("layout"):
		title := cmd.String("title")
		if title == "" {
			title = f.Title
		}
		out = web.Wrap(web.EmailLayout, title, out)
	case !cmd.Bool("fragment"):
		out = htmlgen.Document(out)
	}
	if cmd.Bool("format") {
		out = htmlgen.FormatCode(out)
	}
	return writeOutput(cmd, []byte(out))
}

func runFormat(_ context.Context, cmd *cli.Command) error {
	data, err := readSource(cmd)
	if err != nil {
		return err
	}
	return writeOutput(cmd, []byte(htmlgen.FormatCode(string(data))))
}

func runCatalog(_ context.Context, cmd *cli.Command) error {
	cat, err := catalog.Load()
	if err != nil {
		return err
	}

	if id := cmd.Args().First(); id != "" {
		entry, ok := cat.Get(id)
		if !ok {
			return fmt.Errorf("no catalog entry %q", id)
		}
		return writeOutput(cmd, []byte(htmlgen.New(true).Document(entry.Elements)))
	}

	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tELEMENTS\tDESCRIPTION")
	for _, e := range cat.List() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.ID, e.Name, len(e.Elements), e.Description)
	}
	return tw.Flush()
}

func runSave(ctx context.Context, cmd *cli.Command) error {
	data, err := readSource(cmd)
	if err != nil {
		return err
	}
	f, err := parseCanvas(data)
	if err != nil {
		return err
	}

	fragment := htmlgen.New(true).Fragment(f.Elements)
	res, err := facade.NewClient(cmd.String("server")).SaveTemplate(ctx, facade.SaveRequest{
		Name:           cmd.String("name"),
		Title:          cmd.String("title"),
		TemplateType:   cmd.String("type"),
		Styles:         f.Styles,
		CanvasElements: models.NewStoredElements(f.Elements),
		HTMLContent:    fragment,
		GeneratedHTML:  htmlgen.Document(fragment),
	})
	if err != nil {
		return fmt.Errorf("saving template: %w", err)
	}
	fmt.Fprintln(cmd.Root().Writer, res.Template.ID)
	return nil
}

func runUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("no image file has been specified")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := facade.NewClient(cmd.String("server")).UploadImage(ctx, data, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}
	fmt.Fprintln(cmd.Root().Writer, res.ImageURL)
	return nil
}

func runList(ctx context.Context, cmd *cli.Command) error {
	list, err := facade.NewClient(cmd.String("server")).Templates(ctx, int(cmd.Int("limit")), int(cmd.Int("offset")))
	if err != nil {
		return fmt.Errorf("listing templates: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tUPDATED")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.TemplateType, t.UpdatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

func runDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("no template id has been specified")
	}
	if err := facade.NewClient(cmd.String("server")).DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	slog.Info("template deleted", "id", id)
	return nil
}

// runDownload fetches a rendered template. When --output names a
// directory, the file is named after the template.
func runDownload(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("no template id has been specified")
	}
	client := facade.NewClient(cmd.String("server"))

	body, err := client.Download(ctx, id)
	if err != nil {
		return fmt.Errorf("downloading template: %w", err)
	}

	dst := cmd.String("output")
	if fi, err := os.Stat(dst); dst != "" && err == nil && fi.IsDir() {
		t, err := client.Template(ctx, id)
		if err != nil {
			return fmt.Errorf("fetching template: %w", err)
		}
		dst = filepath.Join(dst, slug.Filename(t.Name))
		if err := os.WriteFile(dst, body, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
		fmt.Fprintln(cmd.Root().Writer, dst)
		return nil
	}
	return writeOutput(cmd, body)
}
