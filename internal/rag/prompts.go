package rag

import "strings"

const rephrasePrompt = `Refine the user query based on the chat history:

- If the query is **self-contained** and does not rely on the chat history, return it as is.
- If the query depends on the chat history, rephrase it into a clear and standalone question.
- Only rephrase when necessary. Return the query without changes if it is already standalone.
- Respond only with the query without any additional comments or explanations.

### Input:
Chat History:
{{.chat_history}}
User Query: {{.query}}

### Output:
Refined Query:`

const multiQueryPrompt = `Your task is to generate one different version of the given user question for better vector store retrieval.
Provide exactly one alternative query, separated by newlines, without any additional comments or explanations.

### Input:
User Question: {{.question}}

### Output:`

const translatePrompt = `You are a helpful assistant who is an expert in translating any text to {{.language}} for the electric motor production industry.

Translate the following text to {{.language}}, only return the translation:

{{.text}}`

const answerPrompt = `Answer the following question based on the provided context.
Don't include any references to the question or the context in the response.
Keep the answer relevant to the question and the context.
Do not include any information outside of the given context.

### Input:
Context: {{.context}}
Question: {{.question}}`

const checkPrompt = `Check if the response provides an answer or at least some relevant information related to the question.
Return 'True' if the response is related and provides some answer to the question, otherwise return 'False'.
Don't provide any additional information or context. Only return 'True' or 'False'.

Take these examples as a reference:
###Sample for 'True' Output:
1. The context does not provide a direct answer to the question of how process-secure the layer-wise twisting is.
However, it can be inferred that layer-wise twisting is considered a viable method for twisting hairpins,
and it is mentioned alongside simultaneous twisting of all layers as an alternative to twisting single wires.

2. The context does not provide a direct comparison between resistance soldering and resistance pressure welding in terms of electrical properties.
However, it does mention that laser welding, a different process, shows potential for achieving good electrical properties comparable to the base material.
For a specific comparison between resistance soldering and resistance pressure welding, additional information would be needed.

###Sample for 'False' Output:
1. The context provided does not contain any information about "Luffy."
Therefore, I cannot answer the question based on the given context.
If you have more specific information or a different context, please provide it for a more accurate response.

2. The context given lacks details regarding 'some technique'. As such, I cannot generate a meaningful response based on this information.
Please share more specific details or a new context for a more accurate answer.

### Input:
Question: {{.question}}
Context: {{.response}}`

// formatHistory renders turns oldest first, one "User:" and one "AI:" line per turn.
func formatHistory(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("User: ")
		b.WriteString(t.UserQuestion)
		b.WriteString("\nAI: ")
		b.WriteString(t.AIAnswer)
	}
	return b.String()
}

// formatContext joins candidate contents into the synthesis context.
func formatContext(candidates []Candidate) string {
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "\n\n")
}
