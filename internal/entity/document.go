package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded or ingested invoice file.
type Document struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Content []byte    `json:"-"`
	HashHex string    `json:"hash_hex,omitempty"`
}

// DocumentResult summarises the extraction of one document.
type DocumentResult struct {
	DocumentID  uuid.UUID      `json:"document_id"`
	Name        string         `json:"name"`
	Supplier    string         `json:"supplier"`
	InvoiceNo   string         `json:"invoice_no,omitempty"`
	Method      string         `json:"method"`
	Status      string         `json:"status"`
	Confidence  float32        `json:"confidence"`
	NeedsReview bool           `json:"needs_review"`
	Lines       []PurchaseLine `json:"lines"`
	Warnings    []string       `json:"warnings,omitempty"`
	Error       string         `json:"error,omitempty"`
	Duration    time.Duration  `json:"duration"`
}
