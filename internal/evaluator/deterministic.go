package evaluator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/harini-sv/sheetcheck/internal/models"
	"github.com/harini-sv/sheetcheck/internal/workbook"
	"github.com/rs/zerolog/log"
)

// maxRow is the xlsx row ceiling; references past it are rejected
const maxRow = 1048576

var cellRefPattern = regexp.MustCompile(`([A-Z]+)([0-9]+)`)

// Deterministic runs rule-based checks against a submission. It is a
// pure function of its inputs and safe for concurrent use.
type Deterministic struct {
	opener workbook.Opener
}

func NewDeterministic(opener workbook.Opener) *Deterministic {
	return &Deterministic{opener: opener}
}

// Evaluate dispatches on the question type and never raises past its
// boundary: any unexpected failure becomes a zero-score result with a
// single failing test and confidence 0.5.
func (e *Deterministic) Evaluate(question *models.Question, answerText, filePath string) (result *models.DeterministicResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("questionId", question.ID).Msg("Deterministic evaluation panicked")
			result = &models.DeterministicResult{
				PassedTests: 0,
				TotalTests:  1,
				TestDetails: []string{fmt.Sprintf("✗ Evaluation error: %v", r)},
				Score:       0.0,
				Confidence:  0.5,
			}
		}
	}()

	switch {
	case question.Type == models.TypeFormula:
		return e.evaluateFormula(question, answerText)
	case question.Type == models.TypePractical && filePath != "":
		return e.evaluateWorkbook(question, filePath)
	case question.Type == models.TypeMCQ:
		return e.evaluateMCQ(question, answerText)
	default:
		// Unknown types and practical answers without an upload take
		// the least-informative explanation path.
		return e.evaluateExplanation(question, answerText)
	}
}

func (e *Deterministic) evaluateFormula(question *models.Question, formula string) *models.DeterministicResult {
	var tests []string
	passed := 0

	if validFormulaSyntax(formula) {
		tests = append(tests, "✓ Formula syntax is valid")
		passed++
	} else {
		tests = append(tests, "✗ Formula contains syntax errors")
	}

	if question.Golden.Formula != nil && len(question.Golden.Formula.RequiredFunctions) > 0 {
		required := question.Golden.Formula.RequiredFunctions
		if containsRequiredFunctions(formula, required) {
			tests = append(tests, "✓ Uses required functions")
			passed++
		} else {
			tests = append(tests, fmt.Sprintf("✗ Missing required functions: %s", strings.Join(required, ", ")))
		}
	}

	if validCellReferences(formula) {
		tests = append(tests, "✓ Cell references are valid")
		passed++
	} else {
		tests = append(tests, "✗ Invalid or suspicious cell references")
	}

	return &models.DeterministicResult{
		PassedTests: passed,
		TotalTests:  len(tests),
		TestDetails: tests,
		Score:       float64(passed) / float64(len(tests)),
		Confidence:  0.9,
	}
}

func (e *Deterministic) evaluateWorkbook(question *models.Question, filePath string) *models.DeterministicResult {
	var tests []string
	passed := 0

	golden := question.Golden.Practical
	if golden == nil {
		golden = &models.PracticalGolden{}
	}

	wb, err := e.opener.Open(filePath)
	if err != nil {
		// A workbook that cannot be opened is a single failing test;
		// remaining checks are skipped.
		tests = append(tests, fmt.Sprintf("✗ Error opening workbook: %v", err))
	} else {
		defer wb.Close()

		sheets := make(map[string]bool)
		for _, name := range wb.SheetNames() {
			sheets[name] = true
		}

		for _, name := range golden.RequiredSheets {
			if sheets[name] {
				tests = append(tests, fmt.Sprintf("✓ Sheet '%s' exists", name))
				passed++
			} else {
				tests = append(tests, fmt.Sprintf("✗ Missing required sheet: %s", name))
			}
		}

		if golden.RequiresPivot {
			if wb.HasPivotTables() {
				tests = append(tests, "✓ Contains pivot table(s)")
				passed++
			} else {
				tests = append(tests, "✗ No pivot tables found")
			}
		}

		for sheetCell, expected := range golden.ExpectedValues {
			if cellValueMatches(wb, sheetCell, expected) {
				tests = append(tests, fmt.Sprintf("✓ Correct value in %s", sheetCell))
				passed++
			} else {
				tests = append(tests, fmt.Sprintf("✗ Incorrect value in %s", sheetCell))
			}
		}

		if golden.CheckDataCleaning {
			if dataLooksCleaned(wb) {
				tests = append(tests, "✓ Data appears cleaned")
				passed++
			} else {
				tests = append(tests, "✗ Data cleaning issues detected")
			}
		}
	}

	total := len(tests)
	if total == 0 {
		total = 1
	}

	return &models.DeterministicResult{
		PassedTests: passed,
		TotalTests:  total,
		TestDetails: tests,
		Score:       float64(passed) / float64(total),
		Confidence:  0.85,
	}
}

func (e *Deterministic) evaluateMCQ(question *models.Question, answer string) *models.DeterministicResult {
	correct := ""
	if question.Golden.MCQ != nil {
		correct = question.Golden.MCQ.CorrectOption
	}
	isCorrect := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(correct))

	detail := "✗ Incorrect answer"
	passed := 0
	score := 0.0
	if isCorrect {
		detail = "✓ Correct answer"
		passed = 1
		score = 1.0
	}

	return &models.DeterministicResult{
		PassedTests: passed,
		TotalTests:  1,
		TestDetails: []string{detail},
		Score:       score,
		Confidence:  1.0,
	}
}

func (e *Deterministic) evaluateExplanation(question *models.Question, answer string) *models.DeterministicResult {
	var tests []string
	passed := 0

	// Length is measured in characters, not bytes
	if utf8.RuneCountInString(strings.TrimSpace(answer)) >= 50 {
		tests = append(tests, "✓ Adequate answer length")
		passed++
	} else {
		tests = append(tests, "✗ Answer too brief")
	}

	var keyTerms []string
	if question.Golden.Explanation != nil {
		keyTerms = question.Golden.Explanation.KeyTerms
	}
	lower := strings.ToLower(answer)
	found := 0
	for _, term := range keyTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			found++
		}
	}
	// At least half of the key terms must appear
	if float64(found) >= float64(len(keyTerms))*0.5 {
		tests = append(tests, "✓ Contains relevant terminology")
		passed++
	} else {
		tests = append(tests, "✗ Missing key terminology")
	}

	return &models.DeterministicResult{
		PassedTests: passed,
		TotalTests:  len(tests),
		TestDetails: tests,
		Score:       float64(passed) / float64(len(tests)),
		// Lower confidence, the checks are proxies for subjective grading
		Confidence: 0.7,
	}
}

func validFormulaSyntax(formula string) bool {
	if !strings.HasPrefix(formula, "=") {
		return false
	}
	return strings.Count(formula, "(") == strings.Count(formula, ")")
}

func containsRequiredFunctions(formula string, required []string) bool {
	upper := strings.ToUpper(formula)
	for _, fn := range required {
		if !strings.Contains(upper, strings.ToUpper(fn)) {
			return false
		}
	}
	return true
}

func validCellReferences(formula string) bool {
	for _, match := range cellRefPattern.FindAllStringSubmatch(strings.ToUpper(formula), -1) {
		col, rowStr := match[1], match[2]
		row, err := strconv.Atoi(rowStr)
		if err != nil {
			return false
		}
		if len(col) > 3 || row > maxRow {
			return false
		}
	}
	return true
}

func cellValueMatches(wb workbook.Workbook, sheetCell, expected string) bool {
	parts := strings.SplitN(sheetCell, "!", 2)
	if len(parts) != 2 {
		return false
	}
	value, err := wb.CellValue(parts[0], parts[1])
	if err != nil {
		return false
	}
	return value == expected
}

// dataLooksCleaned is a minimal signal: any sheet holding more than a
// header row counts as cleaned.
func dataLooksCleaned(wb workbook.Workbook) bool {
	for _, sheet := range wb.SheetNames() {
		if wb.RowCount(sheet) > 1 {
			return true
		}
	}
	return false
}
