// Package importer loads the vocabulary catalog from spreadsheet
// files produced by the content pipeline.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/holabot/pkg/models"
)

type vocabStore interface {
	Upsert(ctx context.Context, item *models.VocabItem) (created bool, err error)
}

// Config defines where the catalog columns live in the sheet.
type Config struct {
	FilePath     string
	SheetName    string
	StartRow     int // 1-based; rows above are headers
	SpanishCol   string
	EnglishCol   string
	PhoneticCol  string
	LevelCol     string
	UnitCol      string
	SequenceCol  string
	ExampleESCol string
	ExampleENCol string
	CategoryCol  string
}

// DefaultConfig returns the column layout the content pipeline exports.
func DefaultConfig(filePath string) Config {
	return Config{
		FilePath:     filePath,
		SheetName:    "Sheet1",
		StartRow:     2,
		SpanishCol:   "A",
		EnglishCol:   "B",
		PhoneticCol:  "C",
		LevelCol:     "D",
		UnitCol:      "E",
		SequenceCol:  "F",
		ExampleESCol: "G",
		ExampleENCol: "H",
		CategoryCol:  "I",
	}
}

// Result summarizes an import run.
type Result struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer writes catalog rows through the vocab repository.
type Importer struct {
	vocab vocabStore
}

// New builds an importer.
func New(vocab vocabStore) *Importer {
	return &Importer{vocab: vocab}
}

// Import reads the file (Excel or CSV by extension) and upserts every
// catalog row. Row-level problems are collected, not fatal.
func (imp *Importer) Import(ctx context.Context, config Config) (*Result, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return imp.importFromCSV(ctx, config)
	}
	return imp.importFromExcel(ctx, config)
}

func (imp *Importer) importFromExcel(ctx context.Context, config Config) (*Result, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := imp.processRow(ctx, row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func (imp *Importer) importFromCSV(ctx context.Context, config Config) (*Result, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := &Result{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++
		if err := imp.processRow(ctx, row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

func (imp *Importer) processRow(ctx context.Context, row []string, config Config, result *Result) error {
	item := models.VocabItem{
		Spanish:           cell(row, config.SpanishCol),
		English:           cell(row, config.EnglishCol),
		Phonetic:          cell(row, config.PhoneticCol),
		Level:             models.Level(strings.ToUpper(cell(row, config.LevelCol))),
		ExampleSentenceES: cell(row, config.ExampleESCol),
		ExampleSentenceEN: cell(row, config.ExampleENCol),
		Category:          cell(row, config.CategoryCol),
	}

	if item.Spanish == "" || item.English == "" {
		result.Skipped++
		return nil
	}

	valid := false
	for _, l := range models.Levels {
		if item.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		result.Skipped++
		return fmt.Errorf("unknown level %q", item.Level)
	}

	unit, err := strconv.Atoi(cell(row, config.UnitCol))
	if err != nil {
		result.Skipped++
		return fmt.Errorf("bad unit %q", cell(row, config.UnitCol))
	}
	item.Unit = unit

	if seq := cell(row, config.SequenceCol); seq != "" {
		sequence, err := strconv.Atoi(seq)
		if err != nil {
			result.Skipped++
			return fmt.Errorf("bad sequence %q", seq)
		}
		item.Sequence = sequence
	}

	created, err := imp.vocab.Upsert(ctx, &item)
	if err != nil {
		return err
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}
	return nil
}

// cell returns the trimmed value at a spreadsheet column letter, or ""
// when the row is short.
func cell(row []string, column string) string {
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	idx := 0
	for _, r := range column {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}
