package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"text/template"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var defaultFiles embed.FS

// Catalog holds the card studio's user-facing copy: toast titles and
// descriptions and the editor page text. Entries are flattened dot-keys
// parsed once at load time; rendering uses missingkey=error.
// A Catalog is immutable after New.
type Catalog struct {
	templates map[string]*template.Template
}

// New loads the embedded English messages and then overrides them with
// the YAML files in overrideDir, if given.
func New(overrideDir string) (*Catalog, error) {
	flat, err := loadFS(defaultFiles, false)
	if err != nil {
		return nil, fmt.Errorf("embedded messages: %w", err)
	}
	if dir := strings.TrimSpace(overrideDir); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("read template dir: %w", err)
		}
		overrides, err := loadFS(os.DirFS(dir), true)
		if err != nil {
			return nil, err
		}
		for k, v := range overrides {
			flat[k] = v
		}
	}

	c := &Catalog{templates: make(map[string]*template.Template, len(flat))}
	for k, v := range flat {
		if strings.TrimSpace(v) == "" {
			continue
		}
		t, err := template.New(k).Option("missingkey=error").Parse(v)
		if err != nil {
			return nil, fmt.Errorf("parse message %s: %w", k, err)
		}
		c.templates[k] = t
	}
	return c, nil
}

// loadFS flattens every top-level .yaml/.yml file of fsys in name order.
// With strict set, a key defined by two files is an error.
func loadFS(fsys fs.FS, strict bool) (map[string]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	out := make(map[string]string)
	seen := make(map[string]string)
	for _, name := range files {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		flat := make(map[string]string)
		if err := flattenStrings(doc, "", flat); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		for k, v := range flat {
			if prev, ok := seen[k]; ok && strict {
				return nil, fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
			}
			seen[k] = name
			out[k] = v
		}
	}
	return out, nil
}

func flattenStrings(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flattenStrings(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key prefix")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		// only string leaves
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

// Render executes the message for key with data.
func (c *Catalog) Render(key string, data any) (string, error) {
	if c == nil {
		return "", fmt.Errorf("template not found: %s", key)
	}
	t, ok := c.templates[strings.TrimSpace(key)]
	if !ok {
		return "", fmt.Errorf("template not found: %s", key)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderOr renders key and falls back to def on any error.
func (c *Catalog) RenderOr(key string, data any, def string) string {
	s, err := c.Render(key, data)
	if err != nil {
		return def
	}
	return s
}
