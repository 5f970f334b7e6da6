// Package backend wraps the local oslash search server's REST surface with
// bounded timeouts and a typed error taxonomy. It holds no UI state.
package backend

import "time"

// SearchResult is a single ranked result returned by the backend. Results
// are immutable once received; slice order defines display rank.
type SearchResult struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Path       string    `json:"path,omitempty"`
	Source     string    `json:"source"`
	Author     string    `json:"author,omitempty"`
	URL        string    `json:"url"`
	Snippet    string    `json:"snippet,omitempty"`
	Score      float64   `json:"score"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// SearchResponse is the decoded body of POST /api/v1/search.
type SearchResponse struct {
	Query        string         `json:"query"`
	Results      []SearchResult `json:"results"`
	TotalFound   int            `json:"total_found"`
	SearchTimeMs float64        `json:"search_time_ms"`
}

// SearchOptions tune a single search call.
type SearchOptions struct {
	// Limit caps the number of results; the server default applies when 0.
	Limit int
	// Sources restricts the search to the named connectors.
	Sources []string
	// Context carries optional surrounding text for better ranking.
	Context string
}

// AccountStatus describes one connected source account.
type AccountStatus struct {
	Connected     bool   `json:"connected"`
	Email         string `json:"email,omitempty"`
	DocumentCount int    `json:"document_count"`
	LastSync      string `json:"last_sync,omitempty"`
	Status        string `json:"status"`
}

// ServerStatus is the decoded body of GET /api/v1/status.
type ServerStatus struct {
	Online         bool                     `json:"online"`
	Version        string                   `json:"version"`
	Accounts       map[string]AccountStatus `json:"accounts"`
	TotalDocuments int                      `json:"total_documents"`
	TotalChunks    int                      `json:"total_chunks"`
}

// searchRequest is the JSON body for POST /api/v1/search.
type searchRequest struct {
	Query   string   `json:"query"`
	Limit   int      `json:"limit,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Context string   `json:"context,omitempty"`
}

// authURLResponse is the JSON body for GET /api/v1/auth/{source}/url.
type authURLResponse struct {
	AuthURL string `json:"auth_url"`
}
