package fhir

import (
	"encoding/json"
	"time"
)

// Bundle represents a FHIR Bundle resource.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type"`
	Total        *int          `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
}

// BundleEntry wraps one resource inside a Bundle. Resource stays raw so
// entries without a resource field decode to nil instead of failing.
type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
	Request  *BundleRequest  `json:"request,omitempty"`
}

type BundleRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

// NewCollectionBundle wraps resources into a collection Bundle, in order.
func NewCollectionBundle(resources []Resource) *Bundle {
	now := time.Now().UTC()
	entries := make([]BundleEntry, 0, len(resources))
	for _, r := range resources {
		raw, err := json.Marshal(r)
		if err != nil {
			continue
		}
		entries = append(entries, BundleEntry{Resource: raw})
	}
	return &Bundle{
		ResourceType: "Bundle",
		Type:         "collection",
		Entry:        entries,
		Timestamp:    &now,
	}
}

// NewSearchBundle creates a searchset Bundle from stored resources.
func NewSearchBundle(resources []Resource) *Bundle {
	total := len(resources)
	b := NewCollectionBundle(resources)
	b.Type = "searchset"
	b.Total = &total
	return b
}
