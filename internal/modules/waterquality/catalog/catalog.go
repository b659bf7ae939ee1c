// Package catalog holds the static metadata of every tracked parameter.
// The catalog is decoded once at startup from an embedded TOML document.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

//go:embed catalog.toml
var embeddedCatalog []byte

type catalogFile struct {
	Parameter []catalogEntry `toml:"parameter"`
}

type catalogEntry struct {
	Key     string  `toml:"key"`
	Label   string  `toml:"label"`
	Unit    string  `toml:"unit"`
	Alert   float64 `toml:"alert"`
	Warning float64 `toml:"warning"`
	Color   string  `toml:"color"`
}

// Catalog maps every Parameter to its display metadata and thresholds.
type Catalog struct {
	entries [types.ParameterCount]types.ParameterInfo
}

// Default decodes the embedded catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(embeddedCatalog))
}

// Load decodes a catalog document. Every parameter must appear exactly once
// and unknown keys or fields are rejected.
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("catalog: unknown fields: %s", strings.Join(keys, ", "))
	}

	var c Catalog
	var seen [types.ParameterCount]bool
	for _, e := range f.Parameter {
		p, err := types.ParseParameter(e.Key)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if seen[p] {
			return nil, fmt.Errorf("catalog: duplicate parameter %q", e.Key)
		}
		if strings.TrimSpace(e.Label) == "" {
			return nil, fmt.Errorf("catalog: parameter %q has no label", e.Key)
		}
		seen[p] = true
		c.entries[p] = types.ParameterInfo{
			Parameter: p,
			Label:     e.Label,
			Unit:      e.Unit,
			Alert:     e.Alert,
			Warning:   e.Warning,
			Color:     e.Color,
		}
	}

	var missing []string
	for _, p := range types.Parameters() {
		if !seen[p] {
			missing = append(missing, p.Key())
		}
	}
	if len(missing) > 0 {
		return nil, errors.New("catalog: missing parameters: " + strings.Join(missing, ", "))
	}
	return &c, nil
}

// Info returns the metadata of p.
func (c *Catalog) Info(p types.Parameter) types.ParameterInfo {
	if !p.Valid() {
		return types.ParameterInfo{Parameter: p, Label: p.Key()}
	}
	return c.entries[p]
}

// All returns the metadata of every parameter in display order.
func (c *Catalog) All() []types.ParameterInfo {
	out := make([]types.ParameterInfo, 0, types.ParameterCount)
	for _, p := range types.Parameters() {
		out = append(out, c.entries[p])
	}
	return out
}
