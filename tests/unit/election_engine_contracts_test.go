package unit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	httptransport "trustvote/contexts/election-core/election-engine/transport/http"
)

func TestElectionEngineOpenAPIContractIncludesImplementedRoutes(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "contracts", "api", "v1", "election-engine.openapi.json"))
	if err != nil {
		t.Fatalf("read election-engine openapi: %v", err)
	}

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode election-engine openapi: %v", err)
	}

	expected := map[string][]string{
		"/api/elections":                              {"post"},
		"/api/elections/active":                       {"get"},
		"/api/elections/{election_id}/transition":     {"post"},
		"/api/parties":                                {"post"},
		"/api/elections/{election_id}/positions":      {"post"},
		"/api/elections/{election_id}/candidates":     {"post"},
		"/api/elections/{election_id}/eligibility":    {"post"},
		"/api/elections/{election_id}/roll":           {"post"},
		"/api/elections/{election_id}/roll/{roll_key}": {"get"},
		"/api/elections/{election_id}/ballots":        {"get", "post"},
		"/api/ballots/{ballot_id}/transaction":        {"post"},
		"/api/elections/{election_id}/results":        {"get"},
		"/api/elections/{election_id}/voters/{voter_key}/status": {"get"},
	}

	for path, methods := range expected {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Fatalf("missing path in openapi contract: %s", path)
		}
		for _, method := range methods {
			if _, ok := ops[method]; !ok {
				t.Fatalf("missing method %s for path %s in openapi contract", method, path)
			}
		}
	}
}

func TestElectionEngineEventSchemasCoverCanonicalEventSet(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	eventTypes := []string{
		"election.phase_changed",
		"eligibility.granted",
		"ballot.accepted",
		"ballot.tx_attached",
	}

	requiredEnvelopeFields := []string{
		"event_id",
		"event_type",
		"occurred_at",
		"source_service",
		"trace_id",
		"schema_version",
		"partition_key_path",
		"partition_key",
		"data",
	}

	for _, eventType := range eventTypes {
		path := filepath.Join(root, "contracts", "events", "v1", eventType+".schema.json")
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read event schema %s: %v", eventType, err)
		}

		var schema map[string]any
		if err := json.Unmarshal(raw, &schema); err != nil {
			t.Fatalf("decode event schema %s: %v", eventType, err)
		}

		if title, _ := schema["title"].(string); title != eventType {
			t.Fatalf("schema %s has wrong title: %q", eventType, title)
		}

		required, _ := schema["required"].([]any)
		for _, key := range requiredEnvelopeFields {
			if !containsAnyString(required, key) {
				t.Fatalf("schema %s missing required envelope key %s", eventType, key)
			}
		}

		properties, _ := schema["properties"].(map[string]any)
		eventTypeProp, _ := properties["event_type"].(map[string]any)
		if eventConst, _ := eventTypeProp["const"].(string); eventConst != eventType {
			t.Fatalf("schema %s has wrong event_type const: %q", eventType, eventConst)
		}

		partitionPathProp, _ := properties["partition_key_path"].(map[string]any)
		if partitionConst, _ := partitionPathProp["const"].(string); partitionConst != "election_id" {
			t.Fatalf("schema %s has wrong partition_key_path const: %q", eventType, partitionConst)
		}
	}
}

func TestElectionEngineEmittedEventEnvelopeContractConsistency(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	ballot, err := f.module.Handler.CastBallotHandler(ctx, f.electionID, "voter-1", httptransport.CastBallotRequest{
		PositionID:  f.positionID,
		CandidateID: f.candidateID,
	})
	if err != nil {
		t.Fatalf("cast ballot failed: %v", err)
	}
	if _, err := f.module.Handler.AttachTransactionRefHandler(ctx, ballot.BallotID, httptransport.AttachTransactionRefRequest{
		TxRef: "0xfeed42",
	}); err != nil {
		t.Fatalf("attach tx ref failed: %v", err)
	}

	pendingOutbox, err := f.module.Store.ListPendingOutbox(ctx, 100)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}

	expectedTypes := map[string]bool{
		"election.phase_changed": false,
		"eligibility.granted":    false,
		"ballot.accepted":        false,
		"ballot.tx_attached":     false,
	}

	for _, message := range pendingOutbox {
		var envelope map[string]any
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			t.Fatalf("decode outbox envelope failed: %v", err)
		}
		eventType, _ := envelope["event_type"].(string)
		if _, tracked := expectedTypes[eventType]; tracked {
			expectedTypes[eventType] = true
		}

		if sourceService, _ := envelope["source_service"].(string); sourceService != "election-engine" {
			t.Fatalf("event %s has invalid source_service %q", eventType, sourceService)
		}
		if traceID, _ := envelope["trace_id"].(string); strings.TrimSpace(traceID) == "" {
			t.Fatalf("event %s missing trace_id", eventType)
		}
		if partitionPath, _ := envelope["partition_key_path"].(string); partitionPath != "election_id" {
			t.Fatalf("event %s has invalid partition_key_path %q", eventType, partitionPath)
		}
		partitionKey, _ := envelope["partition_key"].(string)
		if partitionKey != f.electionID {
			t.Fatalf("event %s has wrong partition_key %q", eventType, partitionKey)
		}

		data, _ := envelope["data"].(map[string]any)
		dataElectionID, _ := data["election_id"].(string)
		if dataElectionID != partitionKey {
			t.Fatalf("event %s partition mismatch: data.election_id=%q partition_key=%q", eventType, dataElectionID, partitionKey)
		}
	}

	for eventType, seen := range expectedTypes {
		if !seen {
			t.Fatalf("expected emitted event type not found in outbox: %s", eventType)
		}
	}
}
