// Package synth generates deterministic synthetic FHIR fixtures: one
// Patient resource and a collection Bundle of vital-sign Observations,
// in the exact shapes the seeder consumes.
package synth

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/ehr/fhir-seeder/internal/fhir"
)

type observationDef struct {
	Code    string
	Display string
	Unit    string
	Low     float64
	High    float64
}

// LOINC vital-sign panel with plausible adult reference ranges.
var vitalSigns = []observationDef{
	{"8867-4", "Heart rate", "/min", 55, 100},
	{"8480-6", "Systolic blood pressure", "mm[Hg]", 95, 145},
	{"8462-4", "Diastolic blood pressure", "mm[Hg]", 60, 95},
	{"8310-5", "Body temperature", "Cel", 36.0, 37.8},
	{"9279-1", "Respiratory rate", "/min", 12, 20},
	{"2708-6", "Oxygen saturation in Arterial blood", "%", 92, 100},
	{"29463-7", "Body weight", "kg", 48, 110},
	{"8302-2", "Body height", "cm", 150, 195},
}

var (
	firstNamesMale = []string{
		"James", "Robert", "John", "Michael", "David", "William",
		"Thomas", "Daniel", "Matthew", "Andrew", "Joshua", "Kevin",
	}
	firstNamesFemale = []string{
		"Mary", "Jennifer", "Linda", "Elizabeth", "Susan", "Sarah",
		"Karen", "Emily", "Michelle", "Amanda", "Rachel", "Anna",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia",
		"Miller", "Davis", "Wilson", "Anderson", "Taylor", "Lee",
	}
)

// Generator produces deterministic synthetic FHIR resources.
type Generator struct {
	rng     *rand.Rand
	counter uint64
}

// NewGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) nextID(prefix string) string {
	g.counter++
	return fmt.Sprintf("%s-%08x-%04x", prefix, g.rng.Uint32(), g.counter)
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *Generator) randomDate(minYear, maxYear int) string {
	y := minYear + g.rng.Intn(maxYear-minYear+1)
	m := 1 + g.rng.Intn(12)
	d := 1 + g.rng.Intn(28) // safe for all months
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// Patient produces a FHIR Patient resource. The id is a local placeholder;
// the server assigns the real one on create.
func (g *Generator) Patient() fhir.Resource {
	var firstName, gender string
	if g.rng.Intn(2) == 0 {
		firstName = g.pick(firstNamesMale)
		gender = "male"
	} else {
		firstName = g.pick(firstNamesFemale)
		gender = "female"
	}
	lastName := g.pick(lastNames)

	return fhir.Resource{
		"resourceType": "Patient",
		"id":           g.nextID("pat"),
		"active":       true,
		"name": []interface{}{
			map[string]interface{}{
				"use":    "official",
				"family": lastName,
				"given":  []interface{}{firstName},
			},
		},
		"gender":    gender,
		"birthDate": g.randomDate(1940, 2010),
	}
}

// Observation produces a final vital-sign Observation for the given
// patient reference target.
func (g *Generator) Observation(patientID string) fhir.Resource {
	def := vitalSigns[g.rng.Intn(len(vitalSigns))]
	value := def.Low + g.rng.Float64()*(def.High-def.Low)
	// Round to 1 decimal
	value = float64(int(value*10)) / 10

	return fhir.Resource{
		"resourceType": "Observation",
		"id":           g.nextID("obs"),
		"status":       "final",
		"category": []interface{}{
			map[string]interface{}{
				"coding": []interface{}{
					map[string]interface{}{
						"system": "http://terminology.hl7.org/CodeSystem/observation-category",
						"code":   "vital-signs",
					},
				},
			},
		},
		"code": map[string]interface{}{
			"coding": []interface{}{
				map[string]interface{}{
					"system":  "http://loinc.org",
					"code":    def.Code,
					"display": def.Display,
				},
			},
		},
		"subject": map[string]interface{}{
			"reference": "Patient/" + patientID,
		},
		"effectiveDateTime": g.randomDate(2020, 2025) + "T10:00:00Z",
		"valueQuantity": map[string]interface{}{
			"value":  value,
			"unit":   def.Unit,
			"system": "http://unitsofmeasure.org",
			"code":   def.Unit,
		},
	}
}

// ObservationBundle produces a collection Bundle of count observations,
// all referencing the same placeholder patient.
func (g *Generator) ObservationBundle(patientID string, count int) *fhir.Bundle {
	resources := make([]fhir.Resource, 0, count)
	for i := 0; i < count; i++ {
		resources = append(resources, g.Observation(patientID))
	}
	return fhir.NewCollectionBundle(resources)
}

// WriteFixtures writes a patient fixture and an observation Bundle fixture
// into dir, creating it if needed. The observation subjects reference the
// generated patient's placeholder id; the seeder rewrites them at submit
// time with the server-assigned id.
func WriteFixtures(dir, patientFile, observationsFile string, count int, seed int64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create fixture dir: %w", err)
	}

	g := NewGenerator(seed)
	patient := g.Patient()
	bundle := g.ObservationBundle(patient.ID(), count)

	if err := writeJSON(filepath.Join(dir, patientFile), patient); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, observationsFile), bundle)
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
