package ollama

func buildTagPrompt(content string) string {
	const maxSnippet = 4000
	snippet := content
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return `You label personal notes.
Return a strict JSON object with keys:
tags (array of short lowercase topic strings), confidence (number from 0 to 1).
No markdown, no extra keys.

Note:
` + snippet
}
