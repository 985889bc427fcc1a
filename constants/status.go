package constants

// DocStatus is the outcome of processing one invoice document.
type DocStatus string

// Stable values (stored in batch reports).
const (
	DocStatusQueued  DocStatus = "QUEUED"   // waiting in the worker queue
	DocStatusRunning DocStatus = "RUNNING"  // in progress
	DocStatusTextOK  DocStatus = "TEXT_OK"  // text acquired, extraction pending
	DocStatusParsed  DocStatus = "PARSED"   // lines extracted (possibly zero)
	DocStatusEmpty   DocStatus = "EMPTY"    // no text could be acquired
	DocStatusFailed  DocStatus = "FAILED"   // terminal failure (catalog, store)
)

// ImageConfidenceThreshold flags OCR text below this heuristic confidence for review.
const ImageConfidenceThreshold = 0.6
