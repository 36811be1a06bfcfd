package export

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// The markdown renderer emits <u> for underline; raw HTML must pass
	// through.
	goldmark.WithRendererOptions(ghtml.WithUnsafe()),
)

// HTML converts rendered markdown into a standalone HTML page.
func HTML(title string, markdown []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownEngine.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("export: render html: %w", err)
	}
	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(title))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
