package worksheet

// QuestionResult is the outcome of one question after submission.
type QuestionResult struct {
	Index         int    `json:"index"`
	Question      string `json:"question"`
	Selected      int    `json:"selected"` // -1 when unanswered
	SelectedText  string `json:"selectedText,omitempty"`
	CorrectIndex  int    `json:"correctIndex"`
	CorrectOption string `json:"correctOption"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation"`
}

// Score counts the questions whose selected option is the correct one.
// selections maps a question index to an option index.
func (w Worksheet) Score(selections map[int]int) int {
	score := 0
	for i, q := range w.Questions {
		if option, ok := selections[i]; ok && q.IsCorrect(option) {
			score++
		}
	}
	return score
}

// GradeSelections returns a result for every question in order.
func (w Worksheet) GradeSelections(selections map[int]int) []QuestionResult {
	results := make([]QuestionResult, 0, len(w.Questions))
	for i, q := range w.Questions {
		result := QuestionResult{
			Index:         i,
			Question:      q.Question,
			Selected:      -1,
			CorrectIndex:  q.CorrectAnswerIndex,
			CorrectOption: q.CorrectOption(),
			Explanation:   q.Explanation,
		}
		if option, ok := selections[i]; ok {
			result.Selected = option
			result.Correct = q.IsCorrect(option)
			if option >= 0 && option < len(q.Options) {
				result.SelectedText = q.Options[option]
			}
		}
		results = append(results, result)
	}
	return results
}

// Unanswered returns the indexes of questions without a selection.
func (w Worksheet) Unanswered(selections map[int]int) []int {
	var missing []int
	for i := range w.Questions {
		if _, ok := selections[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}
