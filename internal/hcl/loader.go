package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/sabberworm/wok/internal/config"
	"github.com/sabberworm/wok/internal/ctxlog"
	"github.com/sabberworm/wok/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// debugKey is the attribute the loader consumes instead of passing it on.
const debugKey = "debug"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// pluginBlockType is the only block type a configuration file may contain.
const pluginBlockType = "plugin"

type pluginBlock struct {
	Use *string `hcl:"use,optional"`
}

// Load parses every .hcl file under paths and merges them, in the order
// given, into one model. Paths that do not exist are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := config.New()
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		fileModel, err := l.decodeBody(hclFile.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		model.Merge(fileModel)
	}

	logger.Debug("HCL loading complete.", "options", len(model.Options), "plugins", len(model.Plugins), "debug", model.Debug)
	return model, nil
}

// LoadBytes parses a single in-memory configuration. filename is only used
// in diagnostics.
func (l *Loader) LoadBytes(src []byte, filename string) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	return l.decodeBody(hclFile.Body)
}

func (l *Loader) decodeBody(body hcl.Body) (*config.Model, error) {
	content, diags := body.Content(fileSchema(body))
	if diags.HasErrors() {
		return nil, diags
	}

	model := config.New()
	seen := make(map[string]struct{})
	for _, block := range content.Blocks {
		name := block.Labels[0]
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("plugin %q is declared more than once", name)
		}
		seen[name] = struct{}{}

		var p pluginBlock
		if diags := gohcl.DecodeBody(block.Body, nil, &p); diags.HasErrors() {
			return nil, diags
		}
		binding := &config.PluginBinding{Name: name}
		if p.Use != nil {
			binding.Use = *p.Use
		}
		model.Plugins = append(model.Plugins, binding)
	}

	for name, attr := range content.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		if name == debugKey {
			debug, err := asBool(val)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", name, err)
			}
			model.Debug = debug
			continue
		}
		model.Options[name] = val
	}
	return model, nil
}

// fileSchema declares the plugin block plus every top-level attribute the
// file actually carries, so Content accepts free-form options while still
// rejecting any other block type.
func fileSchema(body hcl.Body) *hcl.BodySchema {
	schema := &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: pluginBlockType, LabelNames: []string{"name"}}},
	}
	if sb, ok := body.(*hclsyntax.Body); ok {
		for name := range sb.Attributes {
			schema.Attributes = append(schema.Attributes, hcl.AttributeSchema{Name: name})
		}
		return schema
	}
	// Other syntaxes can list their attributes once the blocks are set aside.
	_, remain, _ := body.PartialContent(schema)
	if attrs, diags := remain.JustAttributes(); !diags.HasErrors() {
		for name := range attrs {
			schema.Attributes = append(schema.Attributes, hcl.AttributeSchema{Name: name})
		}
	}
	return schema
}

func asBool(val cty.Value) (bool, error) {
	if val.IsNull() {
		return false, nil
	}
	b, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return false, err
	}
	return b.True(), nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found. Files inside a directory are returned in lexical order.
func (l *Loader) findAllHCLFiles(ctx context.Context, paths []string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			allFiles = append(allFiles, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug("Configuration path does not exist, skipping.", "path", path)
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
