package content

import (
	"encoding/json"
	"fmt"
	"log"
)

// contentItemRecord is the wire shape of a content item as the API
// returns it. Enrichment columns arrive as JSON-encoded strings (the
// server stores them as text), so they are held as raw messages and
// decoded leniently during normalization.
type contentItemRecord struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	ContentType      string          `json:"content_type"`
	Status           string          `json:"status"`
	OriginalFilename string          `json:"original_filename"`
	FilePath         string          `json:"file_path"`
	FileSize         *int64          `json:"file_size"`
	MimeType         string          `json:"mime_type"`
	Title            string          `json:"title,omitempty"`
	RawText          string          `json:"raw_text,omitempty"`
	Language         string          `json:"language,omitempty"`
	Topics           json.RawMessage `json:"topics,omitempty"`
	Vocabulary       json.RawMessage `json:"vocabulary,omitempty"`
	GrammarPoints    json.RawMessage `json:"grammar_points,omitempty"`
	ChunkCount       int             `json:"chunk_count,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// normalizeRecord converts a wire record into a ContentItem. Missing or
// invalid required fields fail the conversion; malformed enrichment
// fields are dropped with a warning instead, since a bad analysis blob
// should not hide the item itself.
func normalizeRecord(rec contentItemRecord) (ContentItem, error) {
	if rec.ID == "" {
		return ContentItem{}, fmt.Errorf("content record has no id")
	}
	if !knownContentTypes[ContentType(rec.ContentType)] {
		return ContentItem{}, fmt.Errorf("content record %s has invalid content type %q", rec.ID, rec.ContentType)
	}
	if !knownStatuses[ContentStatus(rec.Status)] {
		return ContentItem{}, fmt.Errorf("content record %s has invalid status %q", rec.ID, rec.Status)
	}
	if rec.OriginalFilename == "" || rec.FilePath == "" || rec.MimeType == "" {
		return ContentItem{}, fmt.Errorf("content record %s is missing file metadata", rec.ID)
	}
	if rec.FileSize == nil {
		return ContentItem{}, fmt.Errorf("content record %s has no file size", rec.ID)
	}

	item := ContentItem{
		ID:               rec.ID,
		UserID:           rec.UserID,
		ContentType:      ContentType(rec.ContentType),
		Status:           ContentStatus(rec.Status),
		OriginalFilename: rec.OriginalFilename,
		FilePath:         rec.FilePath,
		FileSize:         *rec.FileSize,
		MimeType:         rec.MimeType,
		Title:            rec.Title,
		RawText:          rec.RawText,
		Language:         rec.Language,
		ChunkCount:       rec.ChunkCount,
		ErrorMessage:     rec.ErrorMessage,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}

	if !decodeEnrichment(rec.ID, "topics", rec.Topics, &item.Topics) {
		item.Topics = nil
	}
	if !decodeEnrichment(rec.ID, "vocabulary", rec.Vocabulary, &item.Vocabulary) {
		item.Vocabulary = nil
	}
	if !decodeEnrichment(rec.ID, "grammar_points", rec.GrammarPoints, &item.GrammarPoints) {
		item.GrammarPoints = nil
	}

	return item, nil
}

// decodeEnrichment decodes an enrichment column that may arrive either
// as a JSON array or as a JSON string wrapping one. Returns false when
// the payload is absent or unparseable.
func decodeEnrichment(itemID, field string, raw json.RawMessage, out interface{}) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	data := []byte(raw)
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			log.Printf("WARNING: dropping malformed %s on content item %s: %v", field, itemID, err)
			return false
		}
		data = []byte(inner)
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("WARNING: dropping malformed %s on content item %s: %v", field, itemID, err)
		return false
	}
	return true
}

// toRecord converts a ContentItem back to its wire shape, re-encoding
// enrichment fields as JSON strings the way the server stores them.
func toRecord(item ContentItem) contentItemRecord {
	size := item.FileSize
	rec := contentItemRecord{
		ID:               item.ID,
		UserID:           item.UserID,
		ContentType:      string(item.ContentType),
		Status:           string(item.Status),
		OriginalFilename: item.OriginalFilename,
		FilePath:         item.FilePath,
		FileSize:         &size,
		MimeType:         item.MimeType,
		Title:            item.Title,
		RawText:          item.RawText,
		Language:         item.Language,
		ChunkCount:       item.ChunkCount,
		ErrorMessage:     item.ErrorMessage,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
	rec.Topics = encodeEnrichment(item.Topics)
	rec.Vocabulary = encodeEnrichment(item.Vocabulary)
	rec.GrammarPoints = encodeEnrichment(item.GrammarPoints)
	return rec
}

func encodeEnrichment(value interface{}) json.RawMessage {
	switch v := value.(type) {
	case []Topic:
		if v == nil {
			return nil
		}
	case []VocabularyItem:
		if v == nil {
			return nil
		}
	case []GrammarPoint:
		if v == nil {
			return nil
		}
	}
	inner, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	wrapped, err := json.Marshal(string(inner))
	if err != nil {
		return nil
	}
	return wrapped
}
