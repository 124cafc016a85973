package rag

import "strings"

// systemPrimer is the fixed persona preamble for every answer.
const systemPrimer = `You are a helpful assistant for visitors to Mt Hotham.
You have access to information about:
- Accommodation
- Ski passes
- Weather and snow conditions
- Transport options
- Resort dining and facilities
- Safety guidelines

Always answer clearly and concisely.
If the context does not provide enough information, say you don't know and suggest where the visitor can check (e.g., official Mt Hotham website).
`

const answerTemplate = `{system_primer}

You are a helpful assistant for Mt Hotham.
Use the provided context to answer the user's question.

Context:
{context}

Question:
{question}

Answer:`

// renderPrompt fills the fixed answer template with the retrieved context
// and the literal question.
func renderPrompt(contextText, question string) string {
	r := strings.NewReplacer(
		"{system_primer}", systemPrimer,
		"{context}", contextText,
		"{question}", question,
	)
	return r.Replace(answerTemplate)
}
