package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/componentry/internal/config"
	"github.com/vk/componentry/internal/ctxlog"
)

// filePattern selects configuration files inside a directory.
const filePattern = "**/*.hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes the top-level blocks of a configuration file.
type fileRoot struct {
	App        []*appBlock       `hcl:"app,block"`
	Components []*componentBlock `hcl:"component,block"`
}

type appBlock struct {
	Except []string `hcl:"except,optional"`
}

type componentBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Load parses every file reachable from paths and merges them into one
// model. Files are processed in path order; within a directory in lexical
// order. A component configured in several places keeps the last value of
// each attribute, and app.except lists are concatenated.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := config.NewModel()
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := decodeInto(model, hclFile.Body); err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		model.Files = append(model.Files, file)
	}

	logger.Debug("HCL loading complete.", "files", len(model.Files), "components", len(model.Components), "except", model.App.Except)
	return model, nil
}

// LoadSource decodes a single in-memory HCL document. filename is only used
// in diagnostics.
func (l *Loader) LoadSource(src []byte, filename string) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	model := config.NewModel()
	if err := decodeInto(model, hclFile.Body); err != nil {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
	}
	model.Files = append(model.Files, filename)
	return model, nil
}

func decodeInto(model *config.Model, body hcl.Body) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return diags
	}

	for _, app := range root.App {
		model.App.Except = append(model.App.Except, app.Except...)
	}
	for _, block := range root.Components {
		attrs, err := attributes(block.Body)
		if err != nil {
			return fmt.Errorf("component '%s': %w", block.Name, err)
		}
		model.Merge(block.Name, attrs)
	}
	return nil
}

// attributes evaluates every attribute of a component block into a native
// Go value. Nested blocks are not allowed.
func attributes(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute '%s': %w", name, err)
		}
		out[name] = native
	}
	return out, nil
}

// findFiles expands paths into a de-duplicated list of .hcl files.
// Directories are searched recursively.
func findFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(path), filePattern)
		if err != nil {
			return nil, fmt.Errorf("error searching %s: %w", path, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(filepath.Join(path, filepath.FromSlash(m)))
		}
	}
	return all, nil
}
