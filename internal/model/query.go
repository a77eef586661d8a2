package model

import "encoding/json"

const (
	ErrMsgNoDocuments = "No relevant PDFs found"
	ErrMsgNoText      = "No relevant text found in the identified PDFs"
)

type OnlineMedia struct {
	Images []string `json:"online_images"`
	Videos []string `json:"online_videos"`
	Links  []string `json:"online_links"`
}

// QueryResult is either a full answer or, when Error is set, one of the two
// empty-retrieval terminations.
type QueryResult struct {
	Query         string          `json:"query"`
	Answer        string          `json:"answer"`
	References    []CitationGroup `json:"pdf_references"`
	SimilarImages []RankedImage   `json:"similar_images"`
	OnlineImages  []string        `json:"online_images"`
	OnlineVideos  []string        `json:"online_videos"`
	OnlineLinks   []string        `json:"online_links"`
	Error         string          `json:"error,omitempty"`
}

func (r QueryResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: r.Error})
	}
	type plain QueryResult
	out := plain(r)
	out.References = nonNil(out.References)
	out.SimilarImages = nonNil(out.SimilarImages)
	out.OnlineImages = nonNil(out.OnlineImages)
	out.OnlineVideos = nonNil(out.OnlineVideos)
	out.OnlineLinks = nonNil(out.OnlineLinks)
	return json.Marshal(out)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
