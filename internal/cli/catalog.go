package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/schema"
)

// Catalog output formats.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

type catalogParameter struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Required    bool     `yaml:"required"`
	Default     any      `yaml:"default,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Enum        []string `yaml:"enum,omitempty"`
}

type catalogTool struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Category    string             `yaml:"category"`
	Parameters  []catalogParameter `yaml:"parameters"`
}

// WriteCatalog writes the tool descriptors in the requested format.
// render, when set, post-processes markdown output (e.g. glamour for terminals).
func WriteCatalog(w io.Writer, tools []domain.Tool, format string, render func(string) (string, error)) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tools)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(catalogView(tools)); err != nil {
			return err
		}
		return enc.Close()

	case FormatMarkdown:
		md := CatalogMarkdown(tools)
		if render != nil {
			out, err := render(md)
			if err != nil {
				return fmt.Errorf("render markdown: %w", err)
			}
			md = out
		}
		_, err := io.WriteString(w, md)
		return err
	}
	return fmt.Errorf("unsupported format %q (want json, yaml or markdown)", format)
}

func catalogView(tools []domain.Tool) []catalogTool {
	out := make([]catalogTool, 0, len(tools))
	for _, t := range tools {
		ct := catalogTool{
			Name:        t.Name,
			Description: t.Description,
			Category:    t.Category,
			Parameters:  make([]catalogParameter, 0, len(t.Parameters)),
		}
		for _, p := range t.Parameters {
			ct.Parameters = append(ct.Parameters, catalogParameter{
				Name:        p.Name,
				Type:        string(p.Type),
				Required:    p.Required,
				Default:     p.Default,
				Description: p.Description,
				Enum:        p.Enum,
			})
		}
		out = append(out, ct)
	}
	return out
}

// CatalogMarkdown renders the descriptors as a markdown document, one section per tool.
func CatalogMarkdown(tools []domain.Tool) string {
	var b strings.Builder
	b.WriteString("# Tools\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "\n## %s\n\n", t.Name)
		fmt.Fprintf(&b, "_%s_ · %s\n", t.Category, t.Description)
		if len(t.Parameters) == 0 {
			continue
		}
		b.WriteString("\n| Parameter | Type | Required | Default | Description |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, p := range t.Parameters {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s |\n",
				p.Name, typeLabel(p), yesNo(p.Required), defaultLabel(p.Default), p.Description)
		}
	}
	return b.String()
}

func typeLabel(p schema.Parameter) string {
	if len(p.Enum) > 0 {
		return string(p.Type) + " (" + strings.Join(p.Enum, " \\| ") + ")"
	}
	return string(p.Type)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func defaultLabel(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return "`" + string(data) + "`"
}
