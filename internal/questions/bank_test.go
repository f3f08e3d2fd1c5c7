package questions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBankDefaults(t *testing.T) {
	bank, err := NewBank("")
	require.NoError(t, err)

	qs := bank.Load("data_analyst", "easy")
	require.Len(t, qs, 3)
	assert.Equal(t, "da-easy-1", qs[0].ID)
	assert.Equal(t, "da-easy-3", qs[2].ID)
}

func TestLoadIsCaseInsensitive(t *testing.T) {
	bank, err := NewBank("")
	require.NoError(t, err)

	assert.Len(t, bank.Load("Data_Analyst", "EASY"), 3)
}

func TestLoadUnknownCriteria(t *testing.T) {
	bank, err := NewBank("")
	require.NoError(t, err)

	assert.Empty(t, bank.Load("data_analyst", "expert"))
	assert.Empty(t, bank.Load("backend_engineer", "easy"))
}

func TestNewBankFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	data := `[
  {
    "role": "finance",
    "difficulty": "easy",
    "question": {
      "id": "fin-1",
      "text": "Sum the revenue column",
      "type": "formula",
      "golden_answer": {"formula": {"required_functions": ["SUM"]}}
    }
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	bank, err := NewBank(path)
	require.NoError(t, err)

	qs := bank.Load("finance", "easy")
	require.Len(t, qs, 1)
	assert.Equal(t, "fin-1", qs[0].ID)
	require.NotNil(t, qs[0].Golden.Formula)
	assert.Equal(t, []string{"SUM"}, qs[0].Golden.Formula.RequiredFunctions)
}

func TestNewBankMissingFile(t *testing.T) {
	_, err := NewBank(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestNewBankMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewBank(path)
	assert.Error(t, err)
}
