package main

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
)

//go:embed templates/admin/*.tmpl admin_static/*
var adminAssetsFS embed.FS

// adminTemplateFuncs are the helpers the dashboard templates rely on:
// Kigali-local timestamps and the waste-type checkbox options shared between
// the company edit modal and the registration wizard.
var adminTemplateFuncs = template.FuncMap{
	"formatTime": formatAdminTimestamp,
	"wasteTypeOptions": func() []string {
		return companyWasteTypes
	},
	"hasWasteType": func(selected []string, option string) bool {
		for _, wasteType := range selected {
			if wasteType == option {
				return true
			}
		}
		return false
	},
}

type adminTemplateRenderer struct {
	env string
}

func newAdminTemplateRenderer(env string) *adminTemplateRenderer {
	return &adminTemplateRenderer{env: env}
}

// templatesForRender parses the layout plus one content template. Development
// reads from disk so template edits show up without a rebuild; everywhere else
// uses the embedded copies.
func (r *adminTemplateRenderer) templatesForRender(contentTemplatePath string) (*template.Template, error) {
	var sourceFS fs.FS
	if r.env == "development" {
		sourceFS = os.DirFS(".")
	} else {
		sourceFS = adminAssetsFS
	}

	templates, err := template.New("layout.tmpl").
		Funcs(adminTemplateFuncs).
		ParseFS(sourceFS, "templates/admin/layout.tmpl", contentTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("parse admin templates: %w", err)
	}
	return templates, nil
}

func adminStaticFileSystem(env string) (http.FileSystem, error) {
	if env == "development" {
		return http.Dir("admin_static"), nil
	}

	sub, err := fs.Sub(adminAssetsFS, "admin_static")
	if err != nil {
		return nil, fmt.Errorf("admin static fs: %w", err)
	}
	return http.FS(sub), nil
}
