// Package grading defines the canonical in-memory representation of a
// grading response, independent of which server schema produced it.
package grading

// Question is a single graded question as the student submitted it.
type Question struct {
	// ID is the positional index of the question within the submission.
	ID int `json:"id"`

	// Stem is the question text recognized from the photo.
	Stem string `json:"stem"`

	// AnswerGiven is the answer the student wrote.
	AnswerGiven string `json:"answer_given"`

	// Type classifies the question (e.g. "arithmetic", "word_problem").
	// Empty when the server did not report one.
	Type string `json:"type,omitempty"`
}

// Outcome is the server's verdict for one question.
type Outcome struct {
	QuestionID  int     `json:"question_id"`
	Correct     bool    `json:"correct"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`

	// KnowledgePoints names the concepts the question exercises.
	// Never nil after normalization.
	KnowledgePoints []string `json:"knowledge_points"`

	// CorrectAnswer is the expected answer, when the server provides it.
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// Summary aggregates the per-question outcomes of one submission.
type Summary struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectCount   int     `json:"correct_count"`
	WrongCount     int     `json:"wrong_count"`
	TotalScore     float64 `json:"total_score"`

	// AccuracyRate is CorrectCount/TotalQuestions in [0,1],
	// defined as 0 when TotalQuestions is 0.
	AccuracyRate float64 `json:"accuracy_rate"`

	MainIssues      []string `json:"main_issues"`
	KnowledgePoints []string `json:"knowledge_points"`
}

// Result is the canonical grading result. Immutable once produced:
// both schema versions and partially populated server responses map
// into this one shape.
type Result struct {
	TaskID string `json:"task_id"`

	// Timestamp is the creation time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Questions and Outcomes are index-aligned: Outcomes[i] grades
	// Questions[i]. A legacy response yields exactly one of each.
	Questions []Question `json:"questions"`
	Outcomes  []Outcome  `json:"per_question_results"`

	Summary Summary `json:"summary"`
}
