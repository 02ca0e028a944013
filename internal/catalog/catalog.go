//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package catalog loads the reference documents the synthesizers draw
// from: merchants by category, districts by zone, coupon types and
// capture locations.
package catalog

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pgEdge/pgedge-datasim/internal/datagen"
	"github.com/pgEdge/pgedge-datasim/internal/errs"
)

//go:embed data/*.json
var defaults embed.FS

const (
	defaultMerchants        = "data/lojas.json"
	defaultZones            = "data/cep.json"
	defaultCouponTypes      = "data/cupom.json"
	defaultCaptureLocations = "data/locais.json"
)

// Paths points at the four reference documents. An empty path selects the
// embedded default.
type Paths struct {
	Merchants        string `mapstructure:"merchants"`
	Zones            string `mapstructure:"zones"`
	CouponTypes      string `mapstructure:"coupon_types"`
	CaptureLocations string `mapstructure:"capture_locations"`
}

// Category is a merchant category and its merchant pool.
type Category struct {
	Name      string
	Merchants []string
}

// District is a named postal code range.
type District struct {
	Name     string `yaml:"nome"`
	CepStart string `yaml:"cep_inicio"`
	CepEnd   string `yaml:"cep_fim"`
}

// Zone groups districts.
type Zone struct {
	Name      string
	Districts []District
}

// Catalogs holds the loaded reference data. It is read-only after Load
// and may be shared between goroutines.
type Catalogs struct {
	Categories       []Category
	Zones            []Zone
	CouponTypes      []string
	CaptureLocations []string
}

// CategoryNames returns the category names in document order.
func (c *Catalogs) CategoryNames() []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = cat.Name
	}
	return names
}

// Load reads and validates all four documents. Any failure is a
// configuration error.
func Load(paths Paths) (*Catalogs, error) {
	c := &Catalogs{}
	var err error

	if c.Categories, err = loadCategories(paths.Merchants); err != nil {
		return nil, err
	}
	if c.Zones, err = loadZones(paths.Zones); err != nil {
		return nil, err
	}
	if c.CouponTypes, err = loadList(paths.CouponTypes, defaultCouponTypes, "tipo_cupom"); err != nil {
		return nil, err
	}
	if c.CaptureLocations, err = loadList(paths.CaptureLocations, defaultCaptureLocations, "locais"); err != nil {
		return nil, err
	}
	return c, nil
}

// MustLoadDefaults loads the embedded documents and panics on failure.
func MustLoadDefaults() *Catalogs {
	c, err := Load(Paths{})
	if err != nil {
		panic(err)
	}
	return c
}

func readDocument(path, fallback string) ([]byte, string, error) {
	if path == "" {
		data, err := defaults.ReadFile(fallback)
		if err != nil {
			return nil, fallback, errs.Configuration("embedded document %s: %v", fallback, err)
		}
		return data, fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, errs.Configuration("failed to read reference document %s: %v", path, err)
	}
	return data, path, nil
}

// parseMapping parses a document whose root is a mapping and returns the
// key/value node pairs in document order.
func parseMapping(data []byte, name string) ([][2]*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Configuration("failed to parse reference document %s: %v", name, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errs.Configuration("reference document %s is empty", name)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errs.Configuration("reference document %s must be an object", name)
	}

	pairs := make([][2]*yaml.Node, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		pairs = append(pairs, [2]*yaml.Node{root.Content[i], root.Content[i+1]})
	}
	return pairs, nil
}

func loadCategories(path string) ([]Category, error) {
	data, name, err := readDocument(path, defaultMerchants)
	if err != nil {
		return nil, err
	}
	pairs, err := parseMapping(data, name)
	if err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(pairs))
	for _, kv := range pairs {
		var merchants []string
		if err := kv[1].Decode(&merchants); err != nil {
			return nil, errs.Configuration("%s: category %q: %v", name, kv[0].Value, err)
		}
		if len(merchants) == 0 {
			return nil, errs.Configuration("%s: category %q has no merchants", name, kv[0].Value)
		}
		categories = append(categories, Category{Name: kv[0].Value, Merchants: merchants})
	}
	if len(categories) == 0 {
		return nil, errs.Configuration("%s: no categories defined", name)
	}
	return categories, nil
}

func loadZones(path string) ([]Zone, error) {
	data, name, err := readDocument(path, defaultZones)
	if err != nil {
		return nil, err
	}
	pairs, err := parseMapping(data, name)
	if err != nil {
		return nil, err
	}

	zones := make([]Zone, 0, len(pairs))
	for _, kv := range pairs {
		var body struct {
			Districts []District `yaml:"distritos"`
		}
		if err := kv[1].Decode(&body); err != nil {
			return nil, errs.Configuration("%s: zone %q: %v", name, kv[0].Value, err)
		}
		if len(body.Districts) == 0 {
			return nil, errs.Configuration("%s: zone %q has no districts", name, kv[0].Value)
		}
		for _, d := range body.Districts {
			if err := validateDistrict(d); err != nil {
				return nil, errs.Configuration("%s: zone %q: %v", name, kv[0].Value, err)
			}
		}
		zones = append(zones, Zone{Name: kv[0].Value, Districts: body.Districts})
	}
	if len(zones) == 0 {
		return nil, errs.Configuration("%s: no zones defined", name)
	}
	return zones, nil
}

func validateDistrict(d District) error {
	if d.Name == "" {
		return fmt.Errorf("district without a name")
	}
	lo, err := datagen.CepToInt(d.CepStart)
	if err != nil {
		return fmt.Errorf("district %q: %w", d.Name, err)
	}
	hi, err := datagen.CepToInt(d.CepEnd)
	if err != nil {
		return fmt.Errorf("district %q: %w", d.Name, err)
	}
	if hi < lo {
		return fmt.Errorf("district %q: CEP range %s..%s is inverted", d.Name, d.CepStart, d.CepEnd)
	}
	return nil
}

func loadList(path, fallback, key string) ([]string, error) {
	data, name, err := readDocument(path, fallback)
	if err != nil {
		return nil, err
	}
	pairs, err := parseMapping(data, name)
	if err != nil {
		return nil, err
	}

	for _, kv := range pairs {
		if kv[0].Value != key {
			continue
		}
		var items []string
		if err := kv[1].Decode(&items); err != nil {
			return nil, errs.Configuration("%s: %q: %v", name, key, err)
		}
		if len(items) == 0 {
			return nil, errs.Configuration("%s: %q is empty", name, key)
		}
		return items, nil
	}
	return nil, errs.Configuration("%s: missing %q", name, key)
}
