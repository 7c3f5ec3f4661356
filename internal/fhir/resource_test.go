package fhir

import (
	"encoding/json"
	"testing"
)

func TestResource_TypeAndID(t *testing.T) {
	r := Resource{"resourceType": "Patient", "id": "abc"}
	if r.Type() != "Patient" {
		t.Errorf("expected Patient, got %q", r.Type())
	}
	if r.ID() != "abc" {
		t.Errorf("expected abc, got %q", r.ID())
	}

	var empty Resource
	if empty.Type() != "" || empty.ID() != "" {
		t.Error("nil resource should report empty type and id")
	}
}

func TestResource_SetSubjectReference(t *testing.T) {
	r := Resource{
		"resourceType": "Observation",
		"subject":      map[string]interface{}{"reference": "Patient/stale"},
	}

	r.SetSubjectReference("Patient", "abc123")

	if got := r.SubjectReference(); got != "Patient/abc123" {
		t.Fatalf("expected Patient/abc123, got %q", got)
	}
}

func TestResource_SubjectReference_Absent(t *testing.T) {
	r := Resource{"resourceType": "Observation"}
	if r.SubjectReference() != "" {
		t.Errorf("expected empty reference, got %q", r.SubjectReference())
	}
}

func TestNewCollectionBundle_PreservesOrder(t *testing.T) {
	b := NewCollectionBundle([]Resource{
		{"resourceType": "Observation", "id": "o1"},
		{"resourceType": "Observation", "id": "o2"},
	})

	if b.ResourceType != "Bundle" || b.Type != "collection" {
		t.Fatalf("unexpected bundle envelope: %s/%s", b.ResourceType, b.Type)
	}
	if len(b.Entry) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(b.Entry))
	}

	var first Resource
	if err := json.Unmarshal(b.Entry[0].Resource, &first); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if first.ID() != "o1" {
		t.Errorf("expected o1 first, got %q", first.ID())
	}
}

func TestNewSearchBundle_Total(t *testing.T) {
	b := NewSearchBundle([]Resource{{"resourceType": "Patient", "id": "p1"}})
	if b.Type != "searchset" {
		t.Errorf("expected searchset, got %q", b.Type)
	}
	if b.Total == nil || *b.Total != 1 {
		t.Error("expected total 1")
	}
}

func TestOperationOutcome_Diagnostics(t *testing.T) {
	o := NewOperationOutcome(IssueSeverityError, "invalid", "boom")
	if o.Diagnostics() != "boom" {
		t.Errorf("expected boom, got %q", o.Diagnostics())
	}

	var none *OperationOutcome
	if none.Diagnostics() != "" {
		t.Error("nil outcome should report empty diagnostics")
	}
}
