package domain

import "net/http"

// ResponseSource records where a worker response came from.
type ResponseSource string

const (
	SourceNetwork     ResponseSource = "network"
	SourceCache       ResponseSource = "cache"
	SourceOfflinePage ResponseSource = "offline-page"
	SourceBuiltin     ResponseSource = "builtin"
)

// CachedResponse is a fully buffered HTTP response. Being buffered, a value
// can be handed to the caller and stored at the same time.
type CachedResponse struct {
	Status int            `json:"status"`
	Header http.Header    `json:"header"`
	Body   []byte         `json:"-"`
	Source ResponseSource `json:"-"`
}

// Clone returns a deep copy so the cache and the caller never share buffers.
func (r CachedResponse) Clone() CachedResponse {
	out := CachedResponse{Status: r.Status, Header: r.Header.Clone(), Source: r.Source}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// CacheEntry pairs a request key with its stored response.
type CacheEntry struct {
	Key      string
	Response CachedResponse
}
