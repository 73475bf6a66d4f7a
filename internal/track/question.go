package track

// Question is a multiple-choice question in its normalized form. Answer
// holds the text of the correct option regardless of which field name the
// API used for it.
type Question struct {
	Prompt      string
	Options     []string
	Answer      string
	Explanation string
}

// CorrectIndex returns the index of the first option whose text equals
// the answer exactly, or -1 when no option matches.
func (q Question) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt == q.Answer {
			return i
		}
	}
	return -1
}

// IsCorrect reports whether choosing option index i answers q correctly.
// A question whose answer matches no option can never be answered correctly.
func (q Question) IsCorrect(i int) bool {
	ci := q.CorrectIndex()
	return ci >= 0 && i == ci
}

// OptionIndex returns the first index of the option with the given text,
// or -1.
func (q Question) OptionIndex(text string) int {
	for i, opt := range q.Options {
		if opt == text {
			return i
		}
	}
	return -1
}

// Valid reports whether the answer is one of the options.
func (q Question) Valid() bool {
	return q.CorrectIndex() >= 0
}
