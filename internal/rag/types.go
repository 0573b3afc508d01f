package rag

// HistoryWindow is the number of most recent turns used to rephrase a follow-up question.
const HistoryWindow = 2

// NoResponse is the reserved answer text reported to callers when no answer was produced.
const NoResponse = "No-Response"

// Turn is one question and answer exchange of a conversation.
type Turn struct {
	UserQuestion string `json:"user"`
	AIAnswer     string `json:"ai"`
}

// Candidate is a retrieved passage. Content is the identity key for deduplication.
type Candidate struct {
	Content string
	Source  string
	// Year is the publication year, if the index recorded one.
	Year *int
	// Score is the similarity reported by the evidence store, if any.
	Score *float64
}

// ScoredSource is a candidate's source paired with its similarity to the answer.
type ScoredSource struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// AnswerRequest is the input of a single pipeline run. History is supplied by the caller
// and never read from shared state.
type AnswerRequest struct {
	Question string
	History  []Turn
	Filter   FilterSpec
	// Model is the model variant name; empty or unknown names use the default variant.
	Model string
}

// Result is the outcome of a pipeline run: either Answered or NoAnswer.
type Result interface {
	isResult()
}

// Answered is a validated answer with the sources it was grounded on.
type Answered struct {
	Text    string
	Sources []ScoredSource
	Model   string
}

// NoAnswerReason explains why no answer was produced.
type NoAnswerReason string

const (
	// ReasonNoEvidence means retrieval returned no candidates.
	ReasonNoEvidence NoAnswerReason = "no_evidence"
	// ReasonNotAnswered means the synthesized answer did not address the question.
	ReasonNotAnswered NoAnswerReason = "not_answered"
)

// NoAnswer is an intentional non-answer. It carries no sources.
type NoAnswer struct {
	Reason NoAnswerReason
	Model  string
}

func (Answered) isResult() {}
func (NoAnswer) isResult() {}
