package content

// ContentType classifies what kind of media a content item holds.
type ContentType string

const (
	TypeText  ContentType = "text"
	TypeAudio ContentType = "audio"
	TypePDF   ContentType = "pdf"
	TypeVideo ContentType = "video"
)

// ContentStatus is the server-side pipeline stage of a content item.
// The pipeline is not strictly linear: media type determines which
// stages an item actually traverses (audio visits transcribing, text
// and pdf visit extracting/parsing).
type ContentStatus string

const (
	StatusPending       ContentStatus = "pending"
	StatusUploading     ContentStatus = "uploading"
	StatusProcessing    ContentStatus = "processing"
	StatusTranscribing  ContentStatus = "transcribing"
	StatusExtracting    ContentStatus = "extracting"
	StatusTextExtracted ContentStatus = "text_extracted"
	StatusParsing       ContentStatus = "parsing"
	StatusParsed        ContentStatus = "parsed"
	StatusIndexing      ContentStatus = "indexing"
	StatusReady         ContentStatus = "ready"
	StatusFailed        ContentStatus = "failed"
)

// knownStatuses guards wire-record normalization: an unrecognized status
// is a mapping failure, not a silent pass-through.
var knownStatuses = map[ContentStatus]bool{
	StatusPending:       true,
	StatusUploading:     true,
	StatusProcessing:    true,
	StatusTranscribing:  true,
	StatusExtracting:    true,
	StatusTextExtracted: true,
	StatusParsing:       true,
	StatusParsed:        true,
	StatusIndexing:      true,
	StatusReady:         true,
	StatusFailed:        true,
}

var knownContentTypes = map[ContentType]bool{
	TypeText:  true,
	TypeAudio: true,
	TypePDF:   true,
	TypeVideo: true,
}

// IsTerminal reports whether the item has left the processing pipeline.
func (s ContentStatus) IsTerminal() bool {
	return s == StatusReady || s == StatusFailed
}

// IsInFlight reports whether the item is still mid-pipeline and thus a
// reason to keep polling.
func (s ContentStatus) IsInFlight() bool {
	return !s.IsTerminal()
}

// Topic is a discussion topic detected during analysis.
type Topic struct {
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevance_score"`
}

// VocabularyItem is a vocabulary entry extracted during analysis.
type VocabularyItem struct {
	Term       string `json:"term"`
	Context    string `json:"context"`
	Definition string `json:"definition,omitempty"`
}

// GrammarPoint is a grammar concept extracted during analysis.
type GrammarPoint struct {
	Concept     string   `json:"concept"`
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
}

// ContentItem is the local mirror of a server-owned content record. The
// server is authoritative; the tracker only reflects what the last
// successful fetch reported. Enrichment fields stay nil/zero until the
// pipeline stage that produces them has run.
type ContentItem struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	ContentType      ContentType      `json:"content_type"`
	Status           ContentStatus    `json:"status"`
	OriginalFilename string           `json:"original_filename"`
	FilePath         string           `json:"file_path"`
	FileSize         int64            `json:"file_size"`
	MimeType         string           `json:"mime_type"`
	Title            string           `json:"title,omitempty"`
	RawText          string           `json:"raw_text,omitempty"`
	Language         string           `json:"language,omitempty"`
	Topics           []Topic          `json:"topics,omitempty"`
	Vocabulary       []VocabularyItem `json:"vocabulary,omitempty"`
	GrammarPoints    []GrammarPoint   `json:"grammar_points,omitempty"`
	ChunkCount       int              `json:"chunk_count,omitempty"`
	ErrorMessage     string           `json:"error_message,omitempty"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

// CreateContentRequest is the hand-off payload that turns a stored
// object into a server-side content item.
type CreateContentRequest struct {
	ContentType      ContentType `json:"content_type"`
	OriginalFilename string      `json:"original_filename"`
	FilePath         string      `json:"file_path"`
	FileSize         int64       `json:"file_size"`
	MimeType         string      `json:"mime_type"`
}

// AnyInFlight reports whether at least one item is still mid-pipeline.
func AnyInFlight(items []ContentItem) bool {
	for _, item := range items {
		if item.Status.IsInFlight() {
			return true
		}
	}
	return false
}
