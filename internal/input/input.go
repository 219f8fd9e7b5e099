// Package input collects the addresses to check: interactively, from a
// plain text or CSV file, or from the first sheet of an .xlsx workbook.
// Entries are trimmed and blank entries skipped; nothing else is filtered,
// so duplicates are checked (and reported) once per occurrence.
package input

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx"
)

// PromptText is shown before every interactive entry.
const PromptText = "Enter an email address (or 'done' to finish): "

// Prompt reads one address per line from r, writing PromptText to w before
// each, until a line reading "done" (any case) or end of input.
func Prompt(r io.Reader, w io.Writer) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for {
		if _, err := io.WriteString(w, PromptText); err != nil {
			return nil, err
		}
		if !sc.Scan() {
			break
		}
		entry := strings.TrimSpace(sc.Text())
		if strings.EqualFold(entry, "done") {
			break
		}
		if entry != "" {
			out = append(out, entry)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read prompt: %w", err)
	}
	return out, nil
}

// ReadFile reads addresses from path, choosing the format by extension:
// .xlsx workbooks, .csv files (first column) or one address per line.
func ReadFile(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines reads one address per line.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if entry := strings.TrimSpace(sc.Text()); entry != "" {
			out = append(out, entry)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return out, nil
}

// ReadCSV reads the first column of every record. A leading "email" header
// is skipped.
func ReadCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return firstColumn(rows), nil
}

// ReadXLSX reads the first column of the first sheet. A leading "Email"
// header is skipped.
func ReadXLSX(path string) ([]string, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, nil
	}

	var rows [][]string
	for _, row := range wb.Sheets[0].Rows {
		var rec []string
		for _, cell := range row.Cells {
			rec = append(rec, cell.String())
		}
		rows = append(rows, rec)
	}
	return firstColumn(rows), nil
}

func firstColumn(rows [][]string) []string {
	var out []string
	for i, rec := range rows {
		if len(rec) == 0 {
			continue
		}
		entry := strings.TrimSpace(rec[0])
		if i == 0 && strings.EqualFold(entry, "email") {
			continue
		}
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
