package token

// Token is one piece of rendered text and the position of its box on the page.
// Coordinates use the PDF convention: origin bottom-left, y grows upward.
type Token struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Page holds a page's tokens in the order the extractor emitted them.
type Page struct {
	Number int
	Tokens []Token
}

// First reports whether the page is the document's first page, which carries the full header.
func (p Page) First() bool {
	return p.Number == 1
}

// Document is the page-partitioned token stream recovered from one input file.
type Document struct {
	Name  string
	Pages []Page
}
