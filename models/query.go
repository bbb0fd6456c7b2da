package models

// QueryRequest is the body of the query endpoint.
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// RetrievedPassage is one similarity-search hit, relative to a specific
// query. Transient, never persisted.
type RetrievedPassage struct {
	DocumentID string  `json:"documentId"`
	Ordinal    int     `json:"-"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// Answer is the synthesized reply plus the passages used as evidence,
// in retrieval order.
type Answer struct {
	Text       string             `json:"answer"`
	Sources    []RetrievedPassage `json:"sources"`
	NoEvidence bool               `json:"-"`
}
