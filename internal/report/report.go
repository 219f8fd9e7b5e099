// Package report writes validation outcomes as spreadsheets and CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tealeg/xlsx"

	"github.com/optimode/mailprobe/types"
)

var header = []string{"Email", "Status"}

// Split partitions outcomes into valid and invalid, keeping their order.
func Split(outcomes []types.Outcome) (valid, invalid []types.Outcome) {
	for _, o := range outcomes {
		if o.Valid() {
			valid = append(valid, o)
		} else {
			invalid = append(invalid, o)
		}
	}
	return valid, invalid
}

// WriteXLSX writes valid outcomes to validPath (sheet "Valid") and the rest
// to invalidPath (sheet "Invalid"), one (Email, Status) row each under a
// header row. A workbook without rows is not written. It returns the paths
// it wrote.
func WriteXLSX(outcomes []types.Outcome, validPath, invalidPath string) ([]string, error) {
	valid, invalid := Split(outcomes)

	var written []string
	for _, part := range []struct {
		path  string
		sheet string
		rows  []types.Outcome
	}{
		{validPath, "Valid", valid},
		{invalidPath, "Invalid", invalid},
	} {
		if len(part.rows) == 0 {
			continue
		}
		if err := writeWorkbook(part.path, part.sheet, part.rows); err != nil {
			return written, err
		}
		written = append(written, part.path)
	}
	return written, nil
}

func writeWorkbook(path, sheetName string, rows []types.Outcome) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("add sheet %s: %w", sheetName, err)
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().SetString(h)
	}
	for _, o := range rows {
		r := sheet.AddRow()
		r.AddCell().SetString(o.Address)
		r.AddCell().SetString(o.Status.Label())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := wb.Save(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes every outcome as (email, status, detail, mx_host,
// smtp_code, suggestion) with a header row.
func WriteCSV(w io.Writer, outcomes []types.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"email", "status", "detail", "mx_host", "smtp_code", "suggestion"}); err != nil {
		return err
	}
	for _, o := range outcomes {
		code := ""
		if o.SMTPCode != 0 {
			code = strconv.Itoa(o.SMTPCode)
		}
		rec := []string{o.Address, string(o.Status), o.Detail, o.MXHost, code, o.Suggestion}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
