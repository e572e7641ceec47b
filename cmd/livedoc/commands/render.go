package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/render"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	File     string `arg:"" type:"existingfile" help:"Markdown document to render"`
	Output   string `short:"o" name:"output" help:"Write the page to this file instead of stdout"`
	Execute  bool   `short:"x" help:"Execute script panels before rendering (also render.execute_scripts)"`
	Fragment bool   `help:"Write only the rendered document, without the page around it"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	if err := root.Load(g); err != nil {
		return err
	}

	renderer, err := loadDocument(g, r.File, r.Execute)
	if err != nil {
		return err
	}
	defer renderer.Close()

	var buf bytes.Buffer
	if r.Fragment {
		out, err := renderer.HTML()
		if err != nil {
			return errors.InternalError("failed to render document", err)
		}
		buf.WriteString(out)
		buf.WriteByte('\n')
	} else {
		title := strings.TrimSuffix(filepath.Base(r.File), filepath.Ext(r.File))
		if err := renderer.WritePage(&buf, render.PageOptions{Title: title}); err != nil {
			return err
		}
	}

	if r.Output == "" {
		_, err := g.out().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(r.Output, buf.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
			WithContext("path", r.Output)
	}
	fmt.Fprintf(g.out(), "Wrote %s\n", r.Output)
	return nil
}

// loadDocument renders path once, executing scripts when asked to by the
// flag or the configuration.
func loadDocument(g *Global, path string, execute bool) (*render.Renderer, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.DocumentReadError(path, err)
	}
	renderer, err := g.NewRenderer()
	if err != nil {
		return nil, err
	}
	if err := renderer.SetContent(content); err != nil {
		renderer.Close()
		return nil, err
	}
	if execute || g.Config.Render.ExecuteScripts {
		renderer.ExecuteAll()
	}
	return renderer, nil
}
