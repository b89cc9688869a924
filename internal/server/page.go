package server

import "html/template"

const (
	emptyQuestionMessage = "Please type a question."
	blockedMessage       = "Your input appears to contain inappropriate language and was blocked."
	failureMessage       = "Something went wrong while answering. Please try again."
)

type pageData struct {
	Question     string
	HyDE         bool
	Speak        bool
	Error        string
	Blocked      bool
	Reasons      []string
	Hypothetical string
	Answer       template.HTML
	AudioURL     string
}

var page = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Smart Librarian</title>
<style>
body { background-color: #192B37; color: #f2f2f2; font-family: sans-serif; max-width: 46rem; margin: 2rem auto; }
.error, .blocked { background: #FF5640; color: #fff; padding: .75rem 1rem; border-radius: .3rem; }
pre { background: #0f1c24; padding: .75rem; white-space: pre-wrap; }
input[type=text] { width: 100%; padding: .4rem; margin: .5rem 0; }
</style>
</head>
<body>
<h1>Smart Librarian</h1>
<p>Ask questions about books:</p>
<form method="post" action="/ask">
<label><input type="checkbox" name="hyde"{{if .HyDE}} checked{{end}}> Enable HyDE</label><br>
<label><input type="checkbox" name="speak"{{if .Speak}} checked{{end}}> Read the answer aloud</label><br>
<label for="question">Your question about the books:</label>
<input type="text" id="question" name="question" value="{{.Question}}" placeholder="e.g., What is the main theme of The Great Gatsby?">
<button type="submit">Ask</button>
</form>
{{with .Error}}<div class="error">{{.}}</div>{{end}}
{{if .Blocked}}<div class="blocked">` + blockedMessage + `
<details><summary>Why was it blocked?</summary><ul>{{range .Reasons}}<li>{{.}}</li>{{end}}</ul></details>
</div>{{end}}
{{with .Hypothetical}}<h2>HyDE (hypothetical pre-answer)</h2>
<pre>{{.}}</pre>{{end}}
{{with .Answer}}<h2>Final Answer</h2>
<div class="answer">{{.}}</div>{{end}}
{{with .AudioURL}}<audio controls src="{{.}}"></audio>{{end}}
</body>
</html>
`))
