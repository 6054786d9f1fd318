package models

type Option struct {
	ID         string `bson:"id" json:"id"`
	Text       string `bson:"text" json:"option_text"`
	IsCorrect  bool   `bson:"is_correct" json:"is_correct,omitempty"`
	OrderIndex int    `bson:"order_index" json:"order_index"`
}

type Question struct {
	ID         string   `bson:"_id,omitempty" json:"id"`
	TestID     string   `bson:"test_id" json:"test_id"`
	Text       string   `bson:"text" json:"question_text"`
	Type       string   `bson:"type" json:"question_type"`
	Points     int      `bson:"points" json:"points"`
	OrderIndex int      `bson:"order_index" json:"order_index"`
	Options    []Option `bson:"options,omitempty" json:"options,omitempty"`
}

// Sanitized returns a copy safe to hand to callers without grading
// authority: is_correct is cleared on every option.
func (q Question) Sanitized() Question {
	if len(q.Options) == 0 {
		return q
	}
	opts := make([]Option, len(q.Options))
	copy(opts, q.Options)
	for i := range opts {
		opts[i].IsCorrect = false
	}
	q.Options = opts
	return q
}

// SanitizeQuestions strips correctness flags from a whole question tree.
func SanitizeQuestions(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q.Sanitized()
	}
	return out
}

// CorrectOption returns the option marked correct, or nil. Creation
// validation guarantees exactly one for multiple_choice questions.
func (q Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// OptionByID looks up an embedded option.
func (q Question) OptionByID(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}
