package grading

// Summarize derives a Summary from per-question outcomes. It is the
// single place summary arithmetic lives: the normalizer, the history
// save path and the repair pass all recompute through it, so the
// invariant AccuracyRate == CorrectCount/TotalQuestions (0 when empty)
// cannot drift between call sites.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		TotalQuestions:  len(outcomes),
		MainIssues:      []string{},
		KnowledgePoints: []string{},
	}

	seen := make(map[string]bool)
	for _, o := range outcomes {
		if o.Correct {
			s.CorrectCount++
		} else {
			s.WrongCount++
			for _, kp := range o.KnowledgePoints {
				if kp != "" && !seen["issue:"+kp] {
					seen["issue:"+kp] = true
					s.MainIssues = append(s.MainIssues, kp)
				}
			}
		}
		s.TotalScore += o.Score
		for _, kp := range o.KnowledgePoints {
			if kp != "" && !seen[kp] {
				seen[kp] = true
				s.KnowledgePoints = append(s.KnowledgePoints, kp)
			}
		}
	}

	if s.TotalQuestions > 0 {
		s.AccuracyRate = float64(s.CorrectCount) / float64(s.TotalQuestions)
	}
	return s
}

// ConsistentWith reports whether s matches the counts another
// recomputation produced. Field-wise on the integer counts only;
// scores and issue lists are presentational.
func (s Summary) ConsistentWith(other Summary) bool {
	return s.TotalQuestions == other.TotalQuestions &&
		s.CorrectCount == other.CorrectCount &&
		s.WrongCount == other.WrongCount
}
