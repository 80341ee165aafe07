package uploader

import (
	"fmt"
	"strings"

	"lexisync-desktop/internal/services/content"
)

// maxUploadSize caps individual files at 100 MiB.
const maxUploadSize = 100 << 20

// classifyContentType maps a MIME type onto the pipeline's content
// categories. Classification happens at enqueue time so an unsupported
// file fails in the queue instead of mid-transfer.
func classifyContentType(mimeType string) (content.ContentType, error) {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))

	switch {
	case strings.HasPrefix(normalized, "text/"):
		return content.TypeText, nil
	case strings.HasPrefix(normalized, "audio/"):
		return content.TypeAudio, nil
	case normalized == "application/pdf":
		return content.TypePDF, nil
	case strings.HasPrefix(normalized, "video/"):
		return content.TypeVideo, nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", mimeType)
	}
}

// validateFile runs the enqueue-time checks on a picked file.
func validateFile(file SourceFile) (content.ContentType, error) {
	if file.Name == "" || file.Path == "" {
		return "", fmt.Errorf("file has no name or path")
	}
	if file.Size > maxUploadSize {
		return "", fmt.Errorf("file exceeds the %d MB upload limit", maxUploadSize>>20)
	}
	return classifyContentType(file.MimeType)
}
