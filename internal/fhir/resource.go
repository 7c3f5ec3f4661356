// Package fhir holds the minimal FHIR surface the seeder needs: an opaque
// resource representation, the Bundle container, OperationOutcome error
// bodies, and an HTTP client that creates resources on a FHIR server.
package fhir

// Resource is an opaque FHIR resource. The seeder never validates resource
// content beyond the fields it has to read or rewrite, so a generic map is
// the honest representation.
type Resource map[string]interface{}

// Type returns the resourceType field, or "" when absent.
func (r Resource) Type() string {
	t, _ := r["resourceType"].(string)
	return t
}

// ID returns the id field, or "" when absent.
func (r Resource) ID() string {
	id, _ := r["id"].(string)
	return id
}

// SetSubjectReference overwrites the subject of the resource with a
// "<resourceType>/<id>" reference. Any client-supplied subject is replaced;
// only server-assigned ids are trustworthy as reference targets.
func (r Resource) SetSubjectReference(resourceType, id string) {
	r["subject"] = map[string]interface{}{
		"reference": resourceType + "/" + id,
	}
}

// SubjectReference returns subject.reference, or "" when absent.
func (r Resource) SubjectReference() string {
	subject, _ := r["subject"].(map[string]interface{})
	if subject == nil {
		return ""
	}
	ref, _ := subject["reference"].(string)
	return ref
}
