package catalog

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Source is the format-independent catalog input. Entries without a
// description produce no descriptor.
type Source struct {
	Features []Entry `toml:"feature" yaml:"features" json:"features"`
}

// Entry is one feature declaration in a catalog source.
type Entry struct {
	ID          string   `toml:"id" yaml:"id" json:"id"`
	DisplayName *string  `toml:"display_name,omitempty" yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Description *string  `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
	Enables     []string `toml:"enables,omitempty" yaml:"enables,omitempty" json:"enables,omitempty"`
}

// Format names a catalog source encoding.
type Format string

// Supported catalog formats.
const (
	FormatXML  Format = "xml"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q", filepath.Ext(path))
	}
}

// xmlFeatureInfo mirrors the document produced by the server's feature-list
// tool: <featureInfo><feature name="..."><description/>...</feature></featureInfo>.
type xmlFeatureInfo struct {
	XMLName  xml.Name     `xml:"featureInfo"`
	Features []xmlFeature `xml:"feature"`
}

type xmlFeature struct {
	ID          string   `xml:"id,attr"`
	Name        string   `xml:"name,attr"`
	DisplayName *string  `xml:"displayName"`
	Description *string  `xml:"description"`
	Enables     []string `xml:"enables"`
}

// Decode parses data in the given format into a Source.
func Decode(data []byte, format Format) (Source, error) {
	var src Source
	switch format {
	case FormatXML:
		var info xmlFeatureInfo
		if err := xml.Unmarshal(data, &info); err != nil {
			return Source{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
		}
		for _, f := range info.Features {
			id := f.ID
			if id == "" {
				id = f.Name
			}
			src.Features = append(src.Features, Entry{
				ID:          id,
				DisplayName: f.DisplayName,
				Description: f.Description,
				Enables:     f.Enables,
			})
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &src); err != nil {
			return Source{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &src); err != nil {
			return Source{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &src); err != nil {
			return Source{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
		}
	default:
		return Source{}, fmt.Errorf("unsupported catalog format %q", format)
	}

	for i, e := range src.Features {
		if strings.TrimSpace(e.ID) == "" {
			return Source{}, fmt.Errorf("%w: entry %d has no id", ErrMalformedCatalog, i)
		}
	}
	return src, nil
}

// Load reads the catalog source at path and builds a Catalog from it.
func Load(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	src, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	c, err := Build(src)
	if err != nil {
		return nil, fmt.Errorf("building catalog from %s: %w", filepath.Base(path), err)
	}
	return c, nil
}

// Source returns a catalog source that rebuilds an equivalent catalog.
func (c *Catalog) Source() Source {
	src := Source{Features: make([]Entry, 0, len(c.order))}
	for _, id := range c.order {
		f := c.features[id]
		desc := f.Description
		e := Entry{ID: f.ID, Description: &desc}
		if f.DisplayName != "" {
			name := f.DisplayName
			e.DisplayName = &name
		}
		e.Enables = append([]string(nil), f.Enables...)
		src.Features = append(src.Features, e)
	}
	return src
}

// Encode serializes src in the given format. XML is read-only.
func Encode(src Source, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(src)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(src); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(src, "", "  ")
	default:
		return nil, fmt.Errorf("cannot export catalog as %q", format)
	}
}
