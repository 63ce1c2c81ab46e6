package hcl

import (
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/sabberworm/wok/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// Encode writes m as an HCL configuration file. Options are written in name
// order, followed by debug and the plugin blocks.
func (l *Loader) Encode(m *config.Model) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	names := make([]string, 0, len(m.Options))
	for name := range m.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		body.SetAttributeValue(name, m.Options[name])
	}
	if m.Debug {
		body.SetAttributeValue(debugKey, cty.True)
	}

	for _, p := range m.Plugins {
		body.AppendNewline()
		block := body.AppendNewBlock("plugin", []string{p.Name})
		if p.Use != "" {
			block.Body().SetAttributeValue("use", cty.StringVal(p.Use))
		}
	}
	return f.Bytes(), nil
}
