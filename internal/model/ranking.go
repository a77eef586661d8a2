package model

type RankedPassage struct {
	DocumentName string  `json:"pdf_name"`
	Text         string  `json:"text"`
	PageNumber   int     `json:"page_number"`
	Similarity   float64 `json:"similarity"`
	Rank         int     `json:"rank"`
}

type RankedImage struct {
	DocumentName string  `json:"-"`
	ImageBase64  string  `json:"image_base64"`
	Similarity   float64 `json:"similarity"`
	Rank         int     `json:"-"`
}

type CitationGroup struct {
	DocumentName string `json:"pdf_name"`
	PageNumbers  []int  `json:"page_numbers"`
}

// BuildCitations groups passages by document in first-seen order and keeps
// each page number once, also in first-seen order.
func BuildCitations(passages []RankedPassage) []CitationGroup {
	groups := make([]CitationGroup, 0)
	index := make(map[string]int)
	seen := make(map[string]map[int]struct{})
	for _, p := range passages {
		i, ok := index[p.DocumentName]
		if !ok {
			i = len(groups)
			index[p.DocumentName] = i
			seen[p.DocumentName] = make(map[int]struct{})
			groups = append(groups, CitationGroup{DocumentName: p.DocumentName, PageNumbers: []int{}})
		}
		if _, dup := seen[p.DocumentName][p.PageNumber]; dup {
			continue
		}
		seen[p.DocumentName][p.PageNumber] = struct{}{}
		groups[i].PageNumbers = append(groups[i].PageNumbers, p.PageNumber)
	}
	return groups
}
