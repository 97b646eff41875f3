package model

// Summary is the outcome of a chunked summarization request. Degraded is set
// when the partial summaries could not be merged by the model and were joined
// verbatim instead.
type Summary struct {
	Content    string
	ChunkCount int
	Degraded   bool
}

// QuizQuestion is a single multiple-choice question generated from study text.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
}

// ProviderModel describes a model offered by the completion provider.
type ProviderModel struct {
	ID            string
	Name          string
	ContextLength int
}
