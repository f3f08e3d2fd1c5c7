package questions

import (
	"github.com/harini-sv/sheetcheck/internal/models"
)

// defaultEntries is a small built-in bank so the service works out of
// the box without a configured bank file.
var defaultEntries = []Entry{
	{
		Role:       "data_analyst",
		Difficulty: "easy",
		Question: models.Question{
			ID:               "da-easy-1",
			Text:             "Write a formula that looks up the price for the product in A1 from the table in columns B:C.",
			Type:             models.TypeFormula,
			TimeLimitSeconds: 300,
			Golden: models.GoldenAnswer{
				Formula: &models.FormulaGolden{RequiredFunctions: []string{"VLOOKUP"}},
			},
		},
	},
	{
		Role:       "data_analyst",
		Difficulty: "easy",
		Question: models.Question{
			ID:               "da-easy-2",
			Text:             "Which function returns the number of non-empty cells in a range? A) COUNT B) COUNTA C) COUNTIF D) SUMPRODUCT",
			Type:             models.TypeMCQ,
			TimeLimitSeconds: 120,
			Golden: models.GoldenAnswer{
				MCQ: &models.MCQGolden{CorrectOption: "B"},
			},
		},
	},
	{
		Role:       "data_analyst",
		Difficulty: "easy",
		Question: models.Question{
			ID:               "da-easy-3",
			Text:             "Explain the difference between relative and absolute cell references and when you would use each.",
			Type:             models.TypeExplanation,
			TimeLimitSeconds: 300,
			Golden: models.GoldenAnswer{
				Explanation: &models.ExplanationGolden{KeyTerms: []string{"relative", "absolute", "$", "copy"}},
			},
		},
	},
	{
		Role:       "data_analyst",
		Difficulty: "medium",
		Question: models.Question{
			ID:               "da-med-1",
			Text:             "Write a formula that sums sales in B2:B100 only for rows where the region in A2:A100 is \"West\".",
			Type:             models.TypeFormula,
			TimeLimitSeconds: 300,
			Golden: models.GoldenAnswer{
				Formula: &models.FormulaGolden{RequiredFunctions: []string{"SUMIF"}},
			},
		},
	},
	{
		Role:       "data_analyst",
		Difficulty: "medium",
		Question: models.Question{
			ID:               "da-med-2",
			Text:             "Upload a workbook with a 'Summary' sheet containing a pivot table of the raw data, with the grand total in Summary!B10.",
			Type:             models.TypePractical,
			TimeLimitSeconds: 600,
			Golden: models.GoldenAnswer{
				Practical: &models.PracticalGolden{
					RequiredSheets:    []string{"Summary", "Data"},
					RequiresPivot:     true,
					CheckDataCleaning: true,
				},
			},
		},
	},
	{
		Role:       "data_analyst",
		Difficulty: "medium",
		Question: models.Question{
			ID:               "da-med-3",
			Text:             "Explain how you would find and remove duplicate rows in a large dataset, and what pitfalls to watch for.",
			Type:             models.TypeExplanation,
			TimeLimitSeconds: 300,
			Golden: models.GoldenAnswer{
				Explanation: &models.ExplanationGolden{KeyTerms: []string{"duplicate", "remove", "unique", "sort"}},
			},
		},
	},
	{
		Role:       "data_analyst",
		Difficulty: "hard",
		Question: models.Question{
			ID:               "da-hard-1",
			Text:             "Write a formula returning the sales amount for the product in E1 and month in F1 from a two-dimensional table A1:M50.",
			Type:             models.TypeFormula,
			TimeLimitSeconds: 420,
			Golden: models.GoldenAnswer{
				Formula: &models.FormulaGolden{RequiredFunctions: []string{"INDEX", "MATCH"}},
			},
		},
	},
	{
		Role:       "data_analyst",
		Difficulty: "hard",
		Question: models.Question{
			ID:               "da-hard-2",
			Text:             "Which combination avoids the #N/A cascade when a lookup misses? A) IF+ISNA B) IFERROR C) ISERROR+VLOOKUP D) Any of these",
			Type:             models.TypeMCQ,
			TimeLimitSeconds: 120,
			Golden: models.GoldenAnswer{
				MCQ: &models.MCQGolden{CorrectOption: "D"},
			},
		},
	},
}
