package uploader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexisync-desktop/internal/services/content"
)

func TestClassifyContentType(t *testing.T) {
	t.Run("Should classify supported mime types", func(t *testing.T) {
		cases := map[string]content.ContentType{
			"text/plain":      content.TypeText,
			"text/markdown":   content.TypeText,
			"TEXT/HTML":       content.TypeText,
			"audio/mpeg":      content.TypeAudio,
			"audio/wav":       content.TypeAudio,
			"application/pdf": content.TypePDF,
			"video/mp4":       content.TypeVideo,
		}
		for mimeType, want := range cases {
			got, err := classifyContentType(mimeType)
			require.NoError(t, err, mimeType)
			assert.Equal(t, want, got, mimeType)
		}
	})

	t.Run("Should reject unsupported mime types", func(t *testing.T) {
		for _, mimeType := range []string{"application/zip", "image/png", "application/octet-stream", ""} {
			_, err := classifyContentType(mimeType)
			assert.ErrorContains(t, err, "unsupported file type", mimeType)
		}
	})
}

func TestValidateFile(t *testing.T) {
	t.Run("Should accept a file at the size limit", func(t *testing.T) {
		_, err := validateFile(SourceFile{Path: "/tmp/a.txt", Name: "a.txt", Size: maxUploadSize, MimeType: "text/plain"})
		assert.NoError(t, err)
	})

	t.Run("Should reject a file over the size limit", func(t *testing.T) {
		_, err := validateFile(SourceFile{Path: "/tmp/a.txt", Name: "a.txt", Size: maxUploadSize + 1, MimeType: "text/plain"})
		assert.ErrorContains(t, err, "upload limit")
	})

	t.Run("Should reject a file without a path", func(t *testing.T) {
		_, err := validateFile(SourceFile{Name: "a.txt", MimeType: "text/plain"})
		assert.Error(t, err)
	})
}
