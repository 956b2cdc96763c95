package github

// Entry types reported by the git trees API.
const (
	TypeBlob = "blob"
	TypeTree = "tree"
)

// Tree is the response of GET /repos/{owner}/{repo}/git/trees/{sha}?recursive=1.
type Tree struct {
	SHA       string      `json:"sha"`
	URL       string      `json:"url"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// TreeEntry is one path in a recursive tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"` // "blob" or "tree"
	SHA  string `json:"sha"`
	URL  string `json:"url"`
	Size *int64 `json:"size,omitempty"` // absent for trees
}
