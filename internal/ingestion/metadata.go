package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
	"unicode/utf8"
)

// Metadata describes an ingested file. It is logged with every run and never sent to the LLM.
type Metadata struct {
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	IngestedAt time.Time `json:"ingested_at"`
	SHA256     string    `json:"sha256"`
	Size       int       `json:"size"`
	Characters int       `json:"characters"`
}

// NewMetadata fingerprints data and counts the characters of its extracted text
func NewMetadata(filename, format string, data []byte, text string) *Metadata {
	sum := sha256.Sum256(data)
	return &Metadata{
		Filename:   filename,
		Format:     format,
		IngestedAt: time.Now().UTC(),
		SHA256:     hex.EncodeToString(sum[:]),
		Size:       len(data),
		Characters: utf8.RuneCountInString(text),
	}
}
