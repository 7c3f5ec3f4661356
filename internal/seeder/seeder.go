// Package seeder drives the test-data pipeline: load the patient fixture,
// create it on the server, thread the server-assigned patient id into each
// observation's subject reference, and create the observations one by one.
package seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ehr/fhir-seeder/internal/fhir"
	"github.com/ehr/fhir-seeder/internal/fixture"
	"github.com/ehr/fhir-seeder/internal/report"
)

// Submitter creates one resource on the FHIR server.
type Submitter interface {
	Submit(ctx context.Context, resourceType string, resource fhir.Resource) fhir.SubmitResult
}

// Loader reads fixture files from disk.
type Loader interface {
	LoadResource(path string) (fhir.Resource, error)
	LoadCollection(path string) (*fixture.Collection, error)
}

// FileLoader is the disk-backed Loader.
type FileLoader struct{}

func (FileLoader) LoadResource(path string) (fhir.Resource, error) {
	return fixture.LoadResource(path)
}

func (FileLoader) LoadCollection(path string) (*fixture.Collection, error) {
	return fixture.LoadCollection(path)
}

// Summary is the outcome of one seeding run.
type Summary struct {
	PatientID string
	Attempted int
	Submitted int
}

// Options configures a Seeder.
type Options struct {
	ServerURL        string
	PatientPath      string
	ObservationsPath string
	// LaunchURL, when set, is echoed in the closing hint so the operator
	// can launch the downstream app against the seeded data.
	LaunchURL string
}

// Seeder runs the pipeline exactly once: single pass, single attempt per
// resource, no retries.
type Seeder struct {
	submitter Submitter
	loader    Loader
	reporter  report.Reporter
	logger    zerolog.Logger
	opts      Options
}

// New creates a Seeder.
func New(submitter Submitter, loader Loader, reporter report.Reporter, logger zerolog.Logger, opts Options) *Seeder {
	return &Seeder{
		submitter: submitter,
		loader:    loader,
		reporter:  reporter,
		logger:    logger,
		opts:      opts,
	}
}

const rule = "=================================================="

// Run executes the pipeline. A non-nil error means the fixture-load chain
// or the patient submission failed and nothing further was attempted;
// individual observation failures are tallied, not returned.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	s.reporter.Headerf(rule)
	s.reporter.Headerf("POSTing Test Data to FHIR Server")
	s.reporter.Headerf("Server: %s", s.opts.ServerURL)
	s.reporter.Headerf(rule)
	s.reporter.Blank()

	patientID, err := s.createPatient(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.createObservations(ctx, patientID)
	if err != nil {
		return nil, err
	}
	summary.PatientID = patientID

	s.reporter.Blank()
	s.reporter.Headerf(rule)
	s.reporter.Headerf("Done!")
	s.reporter.Headerf(rule)
	s.reporter.Blank()
	if s.opts.LaunchURL != "" {
		s.reporter.Infof("You can now test your app with:")
		s.reporter.Infof("  Launch URI: %s", s.opts.LaunchURL)
	}
	s.reporter.Infof("  Patient ID: %s", patientID)
	s.reporter.Blank()

	return summary, nil
}

// createPatient loads and submits the patient fixture. The returned id is
// the server-assigned one; the fixture does not need to carry an id.
func (s *Seeder) createPatient(ctx context.Context) (string, error) {
	s.reporter.Headerf("Step 1: POSTing Patient resource...")

	patient, err := s.loader.LoadResource(s.opts.PatientPath)
	if err != nil {
		s.reporter.Errorf("%v", err)
		s.reporter.Errorf("Failed to load Patient resource")
		return "", fmt.Errorf("load patient fixture: %w", err)
	}

	result := s.submitOne(ctx, "Patient", patient)
	if !result.Success {
		return "", fmt.Errorf("patient submission failed")
	}

	patientID := result.Resource.ID()
	if patientID == "" {
		s.reporter.Errorf("Cannot proceed without Patient ID. Exiting.")
		return "", fmt.Errorf("patient response carries no id")
	}

	s.reporter.Infof("Patient created with ID: %s", patientID)
	s.reporter.Blank()
	return patientID, nil
}

// createObservations loads the observations fixture and submits every
// recognized observation with its subject rewritten to the server-assigned
// patient id. Individual failures do not stop the loop.
func (s *Seeder) createObservations(ctx context.Context, patientID string) (*Summary, error) {
	s.reporter.Headerf("Step 2: POSTing Observation resources...")

	collection, err := s.loader.LoadCollection(s.opts.ObservationsPath)
	if err != nil {
		s.reporter.Errorf("%v", err)
		s.reporter.Errorf("Failed to load Observations")
		return nil, fmt.Errorf("load observations fixture: %w", err)
	}

	switch collection.Shape {
	case fixture.ShapeBundle:
		s.reporter.Infof("Found Bundle with %d observations to POST", len(collection.Resources))
	case fixture.ShapeList:
		s.reporter.Infof("Found %d observations to POST", len(collection.Resources))
	default:
		s.reporter.Errorf("Observations file should contain a Bundle or JSON array")
	}

	summary := &Summary{}
	if len(collection.Resources) == 0 {
		s.reporter.Errorf("No observations found to POST")
		return summary, nil
	}

	s.reporter.Blank()
	total := len(collection.Resources)
	for i, observation := range collection.Resources {
		if observation == nil {
			// Null entries are skipped and do not count toward the tally.
			s.logger.Debug().Int("index", i+1).Msg("skipping null observation entry")
			continue
		}

		observation.SetSubjectReference("Patient", patientID)

		s.reporter.Infof("Observation %d/%d:", i+1, total)
		summary.Attempted++
		if s.submitOne(ctx, "Observation", observation).Success {
			summary.Submitted++
		}
	}

	s.reporter.Headerf("Summary: %d/%d observations posted successfully", summary.Submitted, summary.Attempted)
	return summary, nil
}

// submitOne submits a single resource and reports the classified outcome.
func (s *Seeder) submitOne(ctx context.Context, resourceType string, resource fhir.Resource) fhir.SubmitResult {
	id := resource.ID()
	if id == "" {
		id = "N/A"
	}
	s.reporter.Infof("POSTing %s (id: %s)...", resourceType, id)

	result := s.submitter.Submit(ctx, resourceType, resource)

	switch {
	case result.Err != nil:
		s.reporter.Errorf("Request failed: %v", result.Err)
		s.reporter.Blank()
	case result.Success:
		s.reporter.Successf("Success (HTTP %d)", result.StatusCode)
		s.reporter.Dump(result.RawBody)
	default:
		s.reporter.Errorf("Failed (HTTP %d)", result.StatusCode)
		if outcome := result.Outcome(); outcome != nil {
			s.logger.Warn().
				Str("resource_type", resourceType).
				Str("diagnostics", strings.TrimSpace(outcome.Diagnostics())).
				Msg("server rejected resource")
		}
		s.reporter.Dump(result.RawBody)
	}

	return result
}
