package history

// Stats are the aggregates derived from the full record sequence,
// recomputed whenever the read cache is repopulated.
type Stats struct {
	TotalRecords   int `json:"total_records"`
	TotalQuestions int `json:"total_questions"`
	TotalCorrect   int `json:"total_correct"`
	TotalWrong     int `json:"total_wrong"`

	// OverallAccuracy is TotalCorrect/TotalQuestions in [0,1],
	// 0 when no questions were graded.
	OverallAccuracy float64 `json:"overall_accuracy"`

	// WrongByKnowledgePoint counts how often each knowledge point
	// appeared in a wrong answer.
	WrongByKnowledgePoint map[string]int `json:"wrong_by_knowledge_point"`

	// LastActivity is the newest record's timestamp in epoch
	// milliseconds, 0 when the history is empty.
	LastActivity int64 `json:"last_activity"`
}

func computeStats(records []Record) Stats {
	stats := Stats{WrongByKnowledgePoint: map[string]int{}}

	for _, r := range records {
		stats.TotalRecords++
		stats.TotalQuestions += r.Result.Summary.TotalQuestions
		stats.TotalCorrect += r.Result.Summary.CorrectCount
		stats.TotalWrong += r.Result.Summary.WrongCount
		for _, wp := range r.WrongPoints {
			stats.WrongByKnowledgePoint[wp.Point]++
		}
		if r.Timestamp > stats.LastActivity {
			stats.LastActivity = r.Timestamp
		}
	}

	if stats.TotalQuestions > 0 {
		stats.OverallAccuracy = float64(stats.TotalCorrect) / float64(stats.TotalQuestions)
	}
	return stats
}
