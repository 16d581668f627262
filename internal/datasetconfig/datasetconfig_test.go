package datasetconfig

import "testing"

func TestLoadWikidata(t *testing.T) {
	cfg, err := Load("../../" + DefaultPath(Wikidata))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RDFType != "http://www.wikidata.org/prop/direct/P31" {
		t.Errorf("unexpected rdf_type: %q", cfg.RDFType)
	}
	if len(cfg.StartDates) == 0 || len(cfg.EndDates) == 0 {
		t.Errorf("expected non-empty start/end date predicates")
	}
	if cfg.Person == "" {
		t.Errorf("expected person class set")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("configs/datasets/does-not-exist.yaml"); err == nil {
		t.Errorf("expected error for missing file")
	}
}
