package models

// QuestionType identifies which evaluation path a question takes
type QuestionType string

const (
	TypeFormula     QuestionType = "formula"
	TypePractical   QuestionType = "practical"
	TypeMCQ         QuestionType = "mcq"
	TypeExplanation QuestionType = "explanation"
)

// Question is an immutable reference item loaded once per interview
type Question struct {
	ID               string       `bson:"id" json:"id"`
	Text             string       `bson:"text" json:"text"`
	Type             QuestionType `bson:"type" json:"type"`
	TimeLimitSeconds int          `bson:"timeLimitSeconds" json:"time_limit_seconds"`
	Golden           GoldenAnswer `bson:"goldenAnswer" json:"golden_answer"`
}

// GoldenAnswer is a tagged union keyed by question type. Only the
// variant matching Question.Type is populated.
type GoldenAnswer struct {
	Formula     *FormulaGolden     `bson:"formula,omitempty" json:"formula,omitempty"`
	Practical   *PracticalGolden   `bson:"practical,omitempty" json:"practical,omitempty"`
	MCQ         *MCQGolden         `bson:"mcq,omitempty" json:"mcq,omitempty"`
	Explanation *ExplanationGolden `bson:"explanation,omitempty" json:"explanation,omitempty"`
}

// FormulaGolden holds reference criteria for formula questions
type FormulaGolden struct {
	RequiredFunctions []string `bson:"requiredFunctions" json:"required_functions"`
}

// PracticalGolden holds reference criteria for uploaded-workbook questions
type PracticalGolden struct {
	RequiredSheets    []string          `bson:"requiredSheets" json:"required_sheets"`
	RequiresPivot     bool              `bson:"requiresPivot" json:"requires_pivot"`
	ExpectedValues    map[string]string `bson:"expectedValues" json:"expected_values"` // "Sheet!A1" -> expected
	CheckDataCleaning bool              `bson:"checkDataCleaning" json:"check_data_cleaning"`
}

// MCQGolden holds the correct option for multiple-choice questions
type MCQGolden struct {
	CorrectOption string `bson:"correctOption" json:"correct_option"`
}

// ExplanationGolden holds key terms expected in free-text answers
type ExplanationGolden struct {
	KeyTerms []string `bson:"keyTerms" json:"key_terms"`
}
