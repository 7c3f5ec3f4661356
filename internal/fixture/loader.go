// Package fixture reads JSON fixture files from disk and normalizes the
// observations fixture into an explicit shape, so callers never re-sniff
// the document structure.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ehr/fhir-seeder/internal/fhir"
)

// ErrNotFound marks a fixture file that does not exist on disk.
var ErrNotFound = errors.New("fixture not found")

// ErrParse marks a fixture file that is not valid JSON.
var ErrParse = errors.New("invalid fixture JSON")

// Shape is the recognized structure of a collection fixture, determined
// once at load time.
type Shape int

const (
	ShapeUnrecognized Shape = iota
	ShapeBundle
	ShapeList
)

func (s Shape) String() string {
	switch s {
	case ShapeBundle:
		return "bundle"
	case ShapeList:
		return "list"
	default:
		return "unrecognized"
	}
}

// Collection is the normalized form of an observations fixture.
//
// For a Bundle, Resources holds each entry's resource in entry order,
// entries without a resource field skipped. For a plain JSON array the
// elements are used as-is; null elements stay nil so callers can decide
// whether they count. Unrecognized shapes carry no resources.
type Collection struct {
	Shape     Shape
	Resources []fhir.Resource
}

// LoadResource reads a single-resource fixture file.
func LoadResource(path string) (fhir.Resource, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var resource fhir.Resource
	if err := json.Unmarshal(data, &resource); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return resource, nil
}

// LoadCollection reads an observations fixture file and normalizes it.
// A file that parses but has an unrecognized shape is not an error; the
// returned collection reports ShapeUnrecognized.
func LoadCollection(path string) (*Collection, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	return normalize(doc), nil
}

func normalize(doc interface{}) *Collection {
	switch v := doc.(type) {
	case map[string]interface{}:
		if fhir.Resource(v).Type() != "Bundle" {
			return &Collection{Shape: ShapeUnrecognized}
		}
		entries, _ := v["entry"].([]interface{})
		resources := make([]fhir.Resource, 0, len(entries))
		for _, e := range entries {
			entry, _ := e.(map[string]interface{})
			if entry == nil {
				continue
			}
			resource, _ := entry["resource"].(map[string]interface{})
			if resource == nil {
				continue
			}
			resources = append(resources, fhir.Resource(resource))
		}
		return &Collection{Shape: ShapeBundle, Resources: resources}

	case []interface{}:
		resources := make([]fhir.Resource, len(v))
		for i, e := range v {
			if m, ok := e.(map[string]interface{}); ok {
				resources[i] = fhir.Resource(m)
			}
		}
		return &Collection{Shape: ShapeList, Resources: resources}

	default:
		return &Collection{Shape: ShapeUnrecognized}
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
