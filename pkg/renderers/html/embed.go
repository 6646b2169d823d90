package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/components/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName = "enrollment.css"
	PageTemplate   = "templates/page.tmpl"
	ErrorTemplate  = "templates/error.tmpl"
)

// TemplatesFS exposes the embedded page layout and component templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the stylesheet and scripts the pages reference so the
// server can mount them under the asset URL.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
