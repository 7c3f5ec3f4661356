package fhir

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, zerolog.Nop())
}

func TestClient_Submit_Success(t *testing.T) {
	var gotPath, gotContentType, gotAccept string
	var gotBody Resource

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"resourceType": "Patient",
			"id":           "server-assigned",
		})
	})

	result := client.Submit(context.Background(), "Patient", Resource{"resourceType": "Patient"})

	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	if result.StatusCode != http.StatusCreated {
		t.Errorf("expected 201, got %d", result.StatusCode)
	}
	if result.Resource.ID() != "server-assigned" {
		t.Errorf("expected server-assigned id, got %q", result.Resource.ID())
	}
	if gotPath != "/Patient" {
		t.Errorf("expected POST to /Patient, got %s", gotPath)
	}
	if gotContentType != "application/fhir+json" || gotAccept != "application/fhir+json" {
		t.Errorf("unexpected headers: content-type=%q accept=%q", gotContentType, gotAccept)
	}
	if gotBody.Type() != "Patient" {
		t.Errorf("server did not receive the resource, got %v", gotBody)
	}
}

func TestClient_Submit_SuccessWithNonJSONBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("created ok"))
	})

	result := client.Submit(context.Background(), "Observation", Resource{"resourceType": "Observation"})

	if !result.Success {
		t.Fatal("2xx with unparseable body still counts as success")
	}
	if result.Resource != nil {
		t.Errorf("expected absent structured body, got %v", result.Resource)
	}
	if result.RawBody != "created ok" {
		t.Errorf("raw text should be surfaced, got %q", result.RawBody)
	}
}

func TestClient_Submit_ServerRejected(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(NewOperationOutcome(IssueSeverityError, "invalid", "missing status"))
	})

	result := client.Submit(context.Background(), "Observation", Resource{"resourceType": "Observation"})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", result.StatusCode)
	}
	outcome := result.Outcome()
	if outcome == nil {
		t.Fatal("expected a parseable OperationOutcome")
	}
	if outcome.Diagnostics() != "missing status" {
		t.Errorf("expected diagnostics surfaced, got %q", outcome.Diagnostics())
	}
}

func TestClient_Submit_RejectedWithRawBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "plain text failure", http.StatusBadGateway)
	})

	result := client.Submit(context.Background(), "Patient", Resource{"resourceType": "Patient"})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Outcome() != nil {
		t.Error("raw text should not parse as an outcome")
	}
	if result.RawBody == "" {
		t.Error("raw body should be surfaced")
	}
}

func TestClient_Submit_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, zerolog.Nop())
	result := client.Submit(context.Background(), "Patient", Resource{"resourceType": "Patient"})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Err == nil {
		t.Fatal("expected a transport error")
	}
	if result.Resource != nil || result.RawBody != "" {
		t.Error("transport failures carry no body")
	}
}

func TestClient_Options(t *testing.T) {
	custom := &http.Client{Timeout: time.Second}
	client := NewClient("http://example.test/fhir/", zerolog.Nop(),
		WithHTTPClient(custom), WithTimeout(2*time.Second))

	if client.httpClient != custom {
		t.Error("expected custom http client")
	}
	if client.httpClient.Timeout != 2*time.Second {
		t.Errorf("expected overridden timeout, got %v", client.httpClient.Timeout)
	}
	if client.BaseURL() != "http://example.test/fhir" {
		t.Errorf("expected trailing slash trimmed, got %q", client.BaseURL())
	}
}
