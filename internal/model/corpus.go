package model

import "encoding/json"

// PassageVector is one stored text fragment of a document with its embedding.
type PassageVector struct {
	Vector     []float32 `json:"vector"`
	Text       string    `json:"text"`
	PageNumber int       `json:"page_number"`
}

// DocumentVectors is the undecoded passage array stored for one document.
// Elements are decoded one by one so a single bad record can be skipped.
type DocumentVectors struct {
	DocumentName string
	Vectors      json.RawMessage
}

type ImageRecord struct {
	DocumentName string
	Caption      string
	Image        []byte
}
