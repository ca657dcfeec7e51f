package testutil

// Wire-format fixtures as they arrive over NATS. Tests that need typed
// triples build them with the message package instead.

// TestTriplesJSON holds individual triples in wire form.
var TestTriplesJSON = []string{
	`{"subject":"https://example.org/doc/v2","predicate":"http://purl.org/dc/terms/replaces","object":{"kind":"uri","value":"https://example.org/doc/v1"}}`,
	`{"subject":"https://example.org/doc/v1","predicate":"http://purl.org/dc/terms/replaces","object":{"kind":"uri","value":"https://example.org/doc/draft"}}`,
	`{"subject":"https://example.org/act/2024-12","predicate":"http://data.europa.eu/eli/ontology#repeals","object":{"kind":"uri","value":"https://example.org/act/1998-07"}}`,
	`{"subject":"https://example.org/doc/v1","predicate":"http://www.w3.org/1999/02/22-rdf-syntax-ns#type","object":{"kind":"uri","value":"https://example.org/type/Contract"}}`,
	`{"subject":"https://example.org/doc/v1","predicate":"http://purl.org/dc/terms/title","object":{"kind":"literal","value":"Service Agreement","datatype":"http://www.w3.org/2001/XMLSchema#string"}}`,
}

// TestReasonRequests holds complete reasoning request payloads.
var TestReasonRequests = []string{
	`{"request_id":"req-0001","triples":[{"subject":"https://example.org/doc/v2","predicate":"http://purl.org/dc/terms/replaces","object":{"kind":"uri","value":"https://example.org/doc/v1"}},{"subject":"https://example.org/doc/v1","predicate":"http://purl.org/dc/terms/replaces","object":{"kind":"uri","value":"https://example.org/doc/draft"}}]}`,
	`{"request_id":"req-0002","triples":[{"subject":"https://example.org/act/2024-12","predicate":"http://data.europa.eu/eli/ontology#repeals","object":{"kind":"uri","value":"https://example.org/act/1998-07"}}],"explanations":true}`,
	`{"request_id":"req-0003","triples":[{"subject":"https://example.org/doc/v1","predicate":"http://www.w3.org/1999/02/22-rdf-syntax-ns#type","object":{"kind":"uri","value":"https://example.org/type/Contract"}}],"profile":"structural","max_iterations":10}`,
}

// TestTripleBatches holds triple batch payloads keyed by reasoning context.
var TestTripleBatches = []string{
	`{"triples":[{"subject":"https://example.org/doc/v1","predicate":"http://purl.org/dc/terms/replaces","object":{"kind":"uri","value":"https://example.org/doc/draft"}}],"context":"case-42","source":"ingest"}`,
	`{"triples":[{"subject":"https://example.org/doc/v2","predicate":"http://purl.org/dc/terms/replaces","object":{"kind":"uri","value":"https://example.org/doc/v1"}}],"context":"case-42","source":"ingest"}`,
	`{"triples":[{"subject":"https://example.org/act/2024-12","predicate":"http://data.europa.eu/eli/ontology#repeals","object":{"kind":"uri","value":"https://example.org/act/1998-07"}}],"context":"case-77"}`,
}

// TestContextIDs holds reasoning context identifiers for batch tests.
var TestContextIDs = []string{
	"case-42",
	"case-77",
	"matter-2024-001",
	"review-alpha",
}
