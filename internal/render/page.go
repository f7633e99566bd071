package render

import "golang.org/x/net/html"

// Item kinds.
const (
	KindDescription = "description"
	KindExcerpt     = "excerpt"
	KindTitle       = "title"
)

// Item is one rendered search result.
type Item struct {
	Docname     string `json:"docname"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
	ExcerptHTML string `json:"excerpt_html,omitempty"`
	Score       int    `json:"score"`
	Kind        string `json:"kind"`

	summary *html.Node
}

// SummaryNode returns the highlighted excerpt node, or nil.
func (it Item) SummaryNode() *html.Node {
	return it.summary
}

// Page receives the output of one search. Implementations must be safe for
// concurrent use: the pulse updates dots while items are appended.
type Page interface {
	// Begin resets the page: heading "Searching", empty status, empty list
	// and the progress message "Preparing search...".
	Begin() error
	// ClearProgress removes the progress message.
	ClearProgress() error
	// SetDots shows n pulse dots after the heading.
	SetDots(n int) error
	AppendItem(item Item) error
	// Finish replaces the heading and sets the status line.
	Finish(title, status string) error
}

// Messages shown by pages.
const (
	HeadingSearching = "Searching"
	HeadingResults   = "Search Results"
	ProgressMessage  = "Preparing search..."
	NoResultsMessage = "Your search did not match any documents. Please make sure that all words are spelled correctly and that you've selected enough categories."
)
