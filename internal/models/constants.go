package models

const (
	TitleMarkerRegex = `\bTitle:\s*`
	UnknownPageRange = "?"
	FallbackAnswer   = "I don't know based on the available book summaries."
	HyDESeparator    = "\n\nHypothetical relevant answer:\n"
	ContextSeparator = "\n\n"
	CosineSpace      = "cosine"
)

// metadata keys stored with every chunk
const (
	MetaTitle     = "title"
	MetaSource    = "source"
	MetaPageRange = "page_range"
	MetaSpace     = "hnsw:space"
)

var (
	HyDESystemPrompt = "You are a helpful assistant for a book-summary librarian. " +
		"Generate a short, plausible hypothetical answer to the user's question " +
		"as if it could be found in a classic novel summary database. " +
		"Keep it neutral and non-fantastical; stay within book summaries."

	HyDEExampleQuestion = "What is the central conflict in 'Brave New World'?"
	HyDEExampleAnswer   = "The tension between engineered social stability and individual freedom, " +
		"as characters struggle against conditioning and the costs of a controlled utopia."

	SearchSystemPrompt = "You are Smart Librarian. Answer using ONLY the provided context from classic book summaries. " +
		"If the answer cannot be found, reply exactly with: " +
		"'" + FallbackAnswer + "'"

	SearchUserPromptTemplate = `Question:
%s

Context (book summaries):
%s
Instructions: Provide a concise answer first, then a short explanation with cited titles.`
)
