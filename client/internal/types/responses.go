package types

// ------------------------------
// Response Types
// ------------------------------

// ListMemoriesResponse wraps GET /v1/memories.
type ListMemoriesResponse struct {
	Memories   []MemoryItem `json:"memories"`
	Pagination Pagination   `json:"pagination"`
}

// FailedID pairs an id with the reason its mutation was rejected.
type FailedID struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchDeleteResponse reports per-id outcomes of a batch delete. Deletes are
// independent per id; a failing id never rolls back the rest.
type BatchDeleteResponse struct {
	Deleted []string   `json:"deleted"`
	Failed  []FailedID `json:"failed,omitempty"`
}

// ListCollectionsResponse wraps GET /v1/collections.
type ListCollectionsResponse struct {
	Collections []Collection `json:"collections"`
}

// StatsResponse wraps GET /v1/analytics/stats.
type StatsResponse struct {
	MemoryCount     int `json:"memoryCount"`
	CollectionCount int `json:"collectionCount"`
	TagCount        int `json:"tagCount"`
}

// LoginResponse wraps POST /v1/auth/login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}
