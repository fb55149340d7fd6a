package domain

// SearchResult is one item of a search response. Never mutated after
// creation.
type SearchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	ImageURL  string `json:"image_url"`
	Key       string `json:"key,omitempty"`
}

// Summary projects a recipe to the shape used by result and bookmark lists.
func (r *Recipe) Summary() SearchResult {
	return SearchResult{
		ID:        r.ID,
		Title:     r.Title,
		Publisher: r.Publisher,
		ImageURL:  r.ImageURL,
		Key:       r.Key,
	}
}

// SearchState is the query, its results, and the pagination cursor.
type SearchState struct {
	Query          string
	Results        []SearchResult
	Page           int // 1-based
	ResultsPerPage int
}

// NumPages returns how many pages the results span.
func (s SearchState) NumPages() int {
	if s.ResultsPerPage <= 0 {
		return 0
	}
	return (len(s.Results) + s.ResultsPerPage - 1) / s.ResultsPerPage
}
