package vectordb

import "time"

// DocumentType categorizes the kind of operational document stored in the index.
type DocumentType string

const (
	DocTypeEquipment   DocumentType = "equipment"
	DocTypeIncidents   DocumentType = "incidents"
	DocTypeProduction  DocumentType = "production"
	DocTypeSafety      DocumentType = "safety"
	DocTypeMaintenance DocumentType = "maintenance"
	DocTypeFuel        DocumentType = "fuel"
	DocTypeQuality     DocumentType = "quality"
	DocTypeGeneric     DocumentType = "document"
)

// Document represents a piece of content to be stored and searched.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata holds provenance information about a document.
type DocumentMetadata struct {
	Source      string // originating file or report name
	Type        DocumentType
	Site        string
	RowID       int
	Page        int
	LastUpdated time.Time
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// SearchFilter allows narrowing search results by metadata fields.
type SearchFilter struct {
	Type   *DocumentType
	Source *string
	Site   *string
}
