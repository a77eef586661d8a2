package model

import "time"

type ChatRecord struct {
	ID            int64           `json:"id"`
	ChatID        string          `json:"chat_id"`
	Query         string          `json:"query"`
	Answer        string          `json:"answer"`
	References    []CitationGroup `json:"pdf_references"`
	SimilarImages []RankedImage   `json:"similar_images"`
	OnlineImages  []string        `json:"online_images"`
	OnlineVideos  []string        `json:"online_videos"`
	OnlineLinks   []string        `json:"online_links"`
	CreatedAt     time.Time       `json:"created_at"`
}
