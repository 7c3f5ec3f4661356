package seeder

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ehr/fhir-seeder/internal/fhir"
	"github.com/ehr/fhir-seeder/internal/report"
	"github.com/ehr/fhir-seeder/internal/stubserver"
	"github.com/ehr/fhir-seeder/internal/synth"
)

// End-to-end: generated fixtures on disk, the real HTTP client, and the
// in-memory stub server.
func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	if err := synth.WriteFixtures(dir, "patient.json", "observations.json", 3, 42); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}

	stub := stubserver.New(zerolog.Nop())
	srv := httptest.NewServer(stub.Handler())
	defer srv.Close()

	client := fhir.NewClient(srv.URL, zerolog.Nop())
	reporter := report.NewConsole(os.Stdout, true)

	s := New(client, FileLoader{}, reporter, zerolog.Nop(), Options{
		ServerURL:        srv.URL,
		PatientPath:      filepath.Join(dir, "patient.json"),
		ObservationsPath: filepath.Join(dir, "observations.json"),
	})

	summary, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Submitted != 3 || summary.Attempted != 3 {
		t.Fatalf("expected 3/3, got %d/%d", summary.Submitted, summary.Attempted)
	}

	patients := stub.Store().List("Patient")
	if len(patients) != 1 {
		t.Fatalf("expected 1 stored patient, got %d", len(patients))
	}
	if summary.PatientID != patients[0].ID() {
		t.Errorf("summary id %q does not match stored patient %q", summary.PatientID, patients[0].ID())
	}

	for i, obs := range stub.Store().List("Observation") {
		if got := obs.SubjectReference(); got != "Patient/"+summary.PatientID {
			t.Errorf("observation %d: subject %q not rewritten to server-assigned id", i+1, got)
		}
	}
}
