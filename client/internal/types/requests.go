package types

// ------------------------------
// Request Types
// ------------------------------

// CreateMemoryRequest holds parameters for a new memory.
type CreateMemoryRequest struct {
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Tags         []string       `json:"tags,omitempty"`
	CollectionID string         `json:"collectionId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// UpdateMemoryRequest is a partial update; nil fields are left untouched by
// the backend. Tag and move bulk operations both reduce to this shape.
type UpdateMemoryRequest struct {
	Title        *string  `json:"title,omitempty"`
	Content      *string  `json:"content,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CollectionID *string  `json:"collectionId,omitempty"`
}

// BatchDeleteRequest holds the ids for a batch delete.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// ExportRequest asks the backend to serialize the given memories.
type ExportRequest struct {
	Format          string   `json:"format"`
	MemoryIDs       []string `json:"memoryIds"`
	IncludeMetadata bool     `json:"includeMetadata,omitempty"`
	IncludeTags     bool     `json:"includeTags,omitempty"`
	IncludeRelated  bool     `json:"includeRelated,omitempty"`
}

// CreateCollectionRequest holds parameters for a new collection.
type CreateCollectionRequest struct {
	Name string `json:"name"`
}

// LoginRequest carries credentials for /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ListMemoriesParams narrows a list call. Zero values mean "unfiltered".
type ListMemoriesParams struct {
	Page         int
	PageSize     int
	CollectionID string
	Tag          string
}
