package testkit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentencingDataGenerator_Basic(t *testing.T) {
	config := DefaultSentencingConfig()
	config.RecordsPerYear = 50

	records, err := NewSentencingDataGenerator(config).GenerateRecords()
	require.NoError(t, err)
	assert.Len(t, records, 13*50)

	perYear := make(map[int]int)
	for i, r := range records {
		perYear[r.SentenceYear]++
		if r.Gender != "M" && r.Gender != "F" {
			t.Errorf("record %d has unexpected gender %q", i, r.Gender)
		}
		if !r.HasMonths || r.SentenceImposedMonths < 12 {
			t.Errorf("record %d has invalid months %v", i, r.SentenceImposedMonths)
		}
		if r.SentenceType != "Prison" && r.SentenceType != "Probation" {
			t.Errorf("record %d has unexpected sentence type %q", i, r.SentenceType)
		}
	}
	assert.Equal(t, 50, perYear[2009])
	assert.Equal(t, 50, perYear[2021])
}

func TestSentencingDataGenerator_Deterministic(t *testing.T) {
	config := DefaultSentencingConfig()
	config.RecordsPerYear = 10

	a, err := NewSentencingDataGenerator(config).GenerateRecords()
	require.NoError(t, err)
	b, err := NewSentencingDataGenerator(config).GenerateRecords()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSentencingDataGenerator_InvalidConfig(t *testing.T) {
	config := DefaultSentencingConfig()
	config.RecordsPerYear = 0
	_, err := NewSentencingDataGenerator(config).GenerateRecords()
	assert.Error(t, err)

	config = DefaultSentencingConfig()
	config.StartYear, config.EndYear = 2020, 2010
	_, err = NewSentencingDataGenerator(config).GenerateRecords()
	assert.Error(t, err)
}

func TestSentencingDataGenerator_WriteCSV(t *testing.T) {
	config := DefaultSentencingConfig()
	config.RecordsPerYear = 3
	records, err := NewSentencingDataGenerator(config).GenerateRecords()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sentences.csv")
	require.NoError(t, WriteCSV(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, Headers, rows[0])
	assert.Len(t, rows, len(records)+1)
}
