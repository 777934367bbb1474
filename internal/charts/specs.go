// Package charts loads the carbon-accounting CSV datasets behind the
// dashboard graphs.
package charts

import (
	"fmt"
	"os"

	"github.com/tinytelemetry/carbondash/internal/model"
	"gopkg.in/yaml.v3"
)

// DatasetSpec names a CSV file and the two columns projected from it.
type DatasetSpec struct {
	Name           string          `yaml:"name"`
	Title          string          `yaml:"title"`
	File           string          `yaml:"file"`
	CategoryColumn string          `yaml:"category_column"`
	MetricColumn   string          `yaml:"metric_column"`
	CategoryLabel  string          `yaml:"category_label"`
	MetricLabel    string          `yaml:"metric_label"`
	Chart          model.ChartKind `yaml:"chart"`
}

// Manifest is the on-disk form of a dataset list.
type Manifest struct {
	Datasets []DatasetSpec `yaml:"datasets"`
}

// DefaultSpecs returns the built-in datasets in display order.
func DefaultSpecs() []DatasetSpec {
	return []DatasetSpec{
		{
			Name:           "lca-stages",
			Title:          "kgCO2eq by LCA Stage",
			File:           "25KingTally_LCS_CSV.csv",
			CategoryColumn: "Row Labels",
			MetricColumn:   "Sum of Global Warming Potential Total (kgCO2eq)",
			CategoryLabel:  "lca_stage",
			MetricLabel:    "kgCO2eq",
			Chart:          model.ChartBar,
		},
		{
			Name:           "materials",
			Title:          "kgCO2eq by Material",
			File:           "25KingTally_div.csv",
			CategoryColumn: "Row Labels",
			MetricColumn:   "GWP",
			CategoryLabel:  "material",
			MetricLabel:    "kgCO2eq",
			Chart:          model.ChartDonut,
		},
		{
			Name:           "category-gwp",
			Title:          "Sum of GWP per Revit Category",
			File:           "25KingTally_category.csv",
			CategoryColumn: "Row Labels",
			MetricColumn:   "Sum of Global Warming Potential Total (kgCO2eq)",
			CategoryLabel:  "revit_category",
			MetricLabel:    "kgCO2eq",
			Chart:          model.ChartTable,
		},
		{
			Name:           "renewable-energy",
			Title:          "Sum of Renewable Energy Demand by Category",
			File:           "25KingTally_category.csv",
			CategoryColumn: "Row Labels",
			MetricColumn:   "Sum of Renewable Energy Demand Total (MJ)",
			CategoryLabel:  "revit_category",
			MetricLabel:    "renewable_energy_demand(mj)",
			Chart:          model.ChartBarLog,
		},
	}
}

// LoadManifest reads dataset specs from a YAML file. An empty path returns
// the defaults.
func LoadManifest(path string) ([]DatasetSpec, error) {
	if path == "" {
		return DefaultSpecs(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing dataset manifest %s: %w", path, err)
	}
	if len(m.Datasets) == 0 {
		return nil, fmt.Errorf("dataset manifest %s lists no datasets", path)
	}
	for i := range m.Datasets {
		m.Datasets[i].applyDefaults()
	}
	if err := Validate(m.Datasets); err != nil {
		return nil, fmt.Errorf("dataset manifest %s: %w", path, err)
	}
	return m.Datasets, nil
}

// Validate checks that specs are complete and uniquely named.
func Validate(specs []DatasetSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for i, s := range specs {
		switch {
		case s.Name == "":
			return fmt.Errorf("dataset %d: name is required", i)
		case s.File == "":
			return fmt.Errorf("dataset %s: file is required", s.Name)
		case s.CategoryColumn == "" || s.MetricColumn == "":
			return fmt.Errorf("dataset %s: category_column and metric_column are required", s.Name)
		}
		switch s.Chart {
		case model.ChartBar, model.ChartBarLog, model.ChartDonut, model.ChartTable:
		default:
			return fmt.Errorf("dataset %s: unknown chart kind %q", s.Name, s.Chart)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("dataset %s: duplicate name", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

func (s *DatasetSpec) applyDefaults() {
	if s.Chart == "" {
		s.Chart = model.ChartBar
	}
	if s.Title == "" {
		s.Title = s.Name
	}
	if s.CategoryLabel == "" {
		s.CategoryLabel = "category"
	}
	if s.MetricLabel == "" {
		s.MetricLabel = "metric"
	}
}
