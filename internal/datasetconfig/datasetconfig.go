// Package datasetconfig loads the per-dataset meta-predicate map spec §6
// names: which predicates carry an entity's rdf:type, point-in-time,
// interval start/end, place classification, and person classification.
// Different RDF dumps name these predicates differently (Wikidata's
// P585/P580/P582 vs DBpedia Ontology's date properties vs YAGO's), so the
// mapping lives outside the binary as YAML, loaded the way
// cmd/migration/main.go's loadTableConfig loads its table mapping: a flat
// os.ReadFile followed by yaml.Unmarshal, no config framework.
package datasetconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Type names the three datasets spec §6's `dataset_type` key recognises.
type Type string

const (
	Wikidata Type = "wikidata"
	DBpedia  Type = "dbpedia"
	YAGO     Type = "yago"
)

// Config is the meta-predicate mapping for one dataset.
type Config struct {
	RDFType     string   `yaml:"rdf_type"`
	PointInTime []string `yaml:"point_in_time"`
	StartDates  []string `yaml:"start_dates"`
	EndDates    []string `yaml:"end_dates"`
	Places      []string `yaml:"places"`
	Person      string   `yaml:"person"`
}

// Load reads and parses the dataset-config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("datasetconfig: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("datasetconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the bundled config file path for a dataset type,
// used when the run config doesn't override `dataset_config_path`.
func DefaultPath(t Type) string {
	return "configs/datasets/" + string(t) + ".yaml"
}
