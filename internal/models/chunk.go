package models

// Page is the extracted text of one PDF page, numbered from 1.
type Page struct {
	Number int
	Text   string
}

// ParsedPDF is the full-document text of a PDF next to its pages.
type ParsedPDF struct {
	Source   string
	FullText string
	Pages    []Page
}

// TitleGroup is the text between two title markers.
type TitleGroup struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Chunk is one retrievable unit stored in the vector collection.
type Chunk struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	PageRange string `json:"page_range"`
	Content   string `json:"content"`
}

// Metadata returns the metadata map persisted with the chunk.
func (c Chunk) Metadata() map[string]string {
	return map[string]string{
		MetaTitle:     c.Title,
		MetaSource:    c.Source,
		MetaPageRange: c.PageRange,
	}
}

// Answer is the outcome of one retrieval-augmented search.
type Answer struct {
	Hypothetical string `json:"hyde,omitempty"`
	Answer       string `json:"answer"`
}
