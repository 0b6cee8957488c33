// Package normalize reconciles the two grading-server response shapes
// into the canonical grading.Result.
//
// The server has shipped two incompatible schemas: a legacy flat
// single-question shape, and the current multi-question shape carrying
// a grading_result array. Detection is by discriminant (presence of
// grading_result), and each variant has its own conversion function.
// Normalization is total: structurally incomplete input yields safe
// defaults, never an error, because a malformed server response must
// not crash the client.
package normalize

import (
	"encoding/json"
	"time"

	"github.com/csh0601/snapgrade/internal/grading"
)

// Default explanations substituted when the server leaves the field blank.
const (
	defaultCorrectExplanation = "Answer is correct."
	defaultWrongExplanation   = "Answer is incorrect; review the related knowledge points."
)

// Normalize converts a raw server payload into a canonical Result.
// Invalid JSON or a non-object payload yields an empty result with a
// zeroed summary.
func Normalize(raw []byte) *grading.Result {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		m = map[string]any{}
	}
	return FromMap(m)
}

// FromMap normalizes an already-decoded payload object.
func FromMap(m map[string]any) *grading.Result {
	var questions []grading.Question
	var outcomes []grading.Outcome

	if items, ok := m["grading_result"].([]any); ok {
		questions, outcomes = fromCurrent(m, items)
	} else if hasLegacyFields(m) {
		questions, outcomes = fromLegacy(m)
	} else {
		// Nothing recognizable: empty result, zeroed summary.
		questions, outcomes = []grading.Question{}, []grading.Outcome{}
	}

	return &grading.Result{
		TaskID:    getString(m, "task_id", "taskId"),
		Timestamp: time.Now().UnixMilli(),
		Questions: questions,
		Outcomes:  outcomes,
		Summary:   buildSummary(m, outcomes),
	}
}

// legacyFields are the flat top-level fields the legacy schema wrote.
// At least one must be present for a payload to count as legacy;
// otherwise the payload carries no grading content at all.
var legacyFields = []string{
	"question", "userAnswer", "user_answer", "answer",
	"isCorrect", "is_correct", "correct",
	"score", "aiFeedback", "ai_feedback", "explanation",
	"knowledgePoint", "knowledge_point",
}

func hasLegacyFields(m map[string]any) bool {
	for _, k := range legacyFields {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// fromLegacy synthesizes exactly one question and one outcome from the
// legacy flat fields.
func fromLegacy(m map[string]any) ([]grading.Question, []grading.Outcome) {
	correct := grading.CorrectFrom(m)

	outcome := grading.Outcome{
		QuestionID:      0,
		Correct:         correct,
		Score:           getFloat(m, "score"),
		Explanation:     getString(m, "aiFeedback", "ai_feedback", "explanation"),
		KnowledgePoints: legacyKnowledgePoints(m),
		CorrectAnswer:   getString(m, "correctAnswer", "correct_answer"),
	}
	if outcome.Explanation == "" {
		outcome.Explanation = defaultExplanation(correct)
	}

	question := grading.Question{
		ID:          0,
		Stem:        getString(m, "question"),
		AnswerGiven: getString(m, "userAnswer", "user_answer", "answer"),
		Type:        getString(m, "type", "question_type"),
	}

	return []grading.Question{question}, []grading.Outcome{outcome}
}

// fromCurrent maps each grading_result element to an outcome tagged
// with its positional index, pairing it with the matching entry of the
// questions array when present and a synthesized question otherwise.
func fromCurrent(m map[string]any, items []any) ([]grading.Question, []grading.Outcome) {
	outcomes := make([]grading.Outcome, 0, len(items))
	questions := make([]grading.Question, 0, len(items))

	rawQuestions, _ := m["questions"].([]any)

	for i, item := range items {
		fields, _ := item.(map[string]any)
		if fields == nil {
			fields = map[string]any{}
		}

		correct := grading.CorrectFrom(fields)
		o := grading.Outcome{
			QuestionID:      i,
			Correct:         correct,
			Score:           getFloat(fields, "score"),
			Explanation:     getString(fields, "explanation", "aiFeedback", "ai_feedback"),
			KnowledgePoints: toStringList(first(fields, "knowledge_points", "knowledgePoints", "knowledge_point")),
			CorrectAnswer:   getString(fields, "correct_answer", "correctAnswer"),
		}
		if o.Explanation == "" {
			o.Explanation = defaultExplanation(correct)
		}
		outcomes = append(outcomes, o)

		q := grading.Question{ID: i}
		if i < len(rawQuestions) {
			qf, _ := rawQuestions[i].(map[string]any)
			if qf != nil {
				q.Stem = getString(qf, "stem", "question", "text")
				q.AnswerGiven = getString(qf, "answer_given", "userAnswer", "user_answer", "answer")
				q.Type = getString(qf, "type", "question_type")
			}
		}
		if q.Stem == "" {
			q.Stem = getString(fields, "question", "stem")
		}
		if q.AnswerGiven == "" {
			q.AnswerGiven = getString(fields, "user_answer", "userAnswer", "answer")
		}
		questions = append(questions, q)
	}

	// Extra entries in the questions array get a zero outcome so the
	// two sequences stay index-aligned.
	for i := len(items); i < len(rawQuestions); i++ {
		qf, _ := rawQuestions[i].(map[string]any)
		q := grading.Question{ID: i}
		if qf != nil {
			q.Stem = getString(qf, "stem", "question", "text")
			q.AnswerGiven = getString(qf, "answer_given", "userAnswer", "user_answer", "answer")
			q.Type = getString(qf, "type", "question_type")
		}
		questions = append(questions, q)
		outcomes = append(outcomes, grading.Outcome{
			QuestionID:      i,
			Explanation:     defaultWrongExplanation,
			KnowledgePoints: []string{},
		})
	}

	return questions, outcomes
}

// buildSummary recomputes counts from the outcomes (so the accuracy
// invariant always holds) and folds in the server summary's issue and
// knowledge-point lists, coerced to deduplicated sequences.
func buildSummary(m map[string]any, outcomes []grading.Outcome) grading.Summary {
	s := grading.Summarize(outcomes)

	raw, _ := m["summary"].(map[string]any)
	if raw == nil {
		return s
	}

	if issues := toStringList(first(raw, "main_issues", "mainIssues")); len(issues) > 0 {
		s.MainIssues = issues
	}
	if score := getFloat(raw, "total_score", "totalScore", "score"); score > 0 {
		s.TotalScore = score
	}
	s.KnowledgePoints = dedup(append(s.KnowledgePoints,
		toStringList(first(raw, "knowledge_points", "knowledgePoints"))...))

	return s
}

func legacyKnowledgePoints(m map[string]any) []string {
	if list := toStringList(first(m, "knowledge_points", "knowledgePoints")); len(list) > 0 {
		return list
	}
	if kp := getString(m, "knowledgePoint", "knowledge_point"); kp != "" {
		return []string{kp}
	}
	return []string{}
}

func defaultExplanation(correct bool) string {
	if correct {
		return defaultCorrectExplanation
	}
	return defaultWrongExplanation
}
