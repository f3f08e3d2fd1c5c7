package questions

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/harini-sv/sheetcheck/internal/models"
	"github.com/rs/zerolog/log"
)

// Entry ties a question to the role/difficulty it is served for
type Entry struct {
	Role       string          `json:"role"`
	Difficulty string          `json:"difficulty"`
	Question   models.Question `json:"question"`
}

// Bank is the question source. It is loaded once at startup and read-only
// afterwards.
type Bank struct {
	entries []Entry
}

// NewBank loads the bank from the given JSON file, or falls back to the
// built-in default set when no path is configured.
func NewBank(path string) (*Bank, error) {
	if path == "" {
		log.Info().Int("questions", len(defaultEntries)).Msg("Using built-in question bank")
		return &Bank{entries: defaultEntries}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	log.Info().Str("path", path).Int("questions", len(entries)).Msg("Question bank loaded")
	return &Bank{entries: entries}, nil
}

// Load returns the ordered question set for the role and difficulty.
// An empty result means no interview is creatable for these parameters.
func (b *Bank) Load(role, difficulty string) []models.Question {
	var out []models.Question
	for _, entry := range b.entries {
		if strings.EqualFold(entry.Role, role) && strings.EqualFold(entry.Difficulty, difficulty) {
			out = append(out, entry.Question)
		}
	}
	return out
}
