// Package export writes the collected dataset to spreadsheet formats.
package export

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/geodaten-labs/streetcrawl/internal/crawl"
)

// Rows flattens a snapshot to one row per (street, house number). A street
// with no numbers yields a single row with an empty number column. Streets
// come out in German collation order, numbers in natural order.
func Rows(snap *crawl.Snapshot) [][]string {
	seen := make(map[string]bool, len(snap.Streets))
	streets := make([]string, 0, len(snap.Streets))
	for _, s := range snap.Streets {
		if !seen[s] {
			seen[s] = true
			streets = append(streets, s)
		}
	}
	for s := range snap.StreetNumbers {
		if !seen[s] {
			seen[s] = true
			streets = append(streets, s)
		}
	}
	collate.New(language.German).SortStrings(streets)

	rows := [][]string{{"street", "house_number"}}
	for _, street := range streets {
		numbers := snap.StreetNumbers[street]
		if len(numbers) == 0 {
			rows = append(rows, []string{street, ""})
			continue
		}
		for _, n := range numbers {
			rows = append(rows, []string{street, n})
		}
	}
	return rows
}

// WriteCSV writes the dataset as a CSV file.
func WriteCSV(snap *crawl.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	for _, row := range Rows(snap) {
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

// WriteXLSX writes the dataset as a single-sheet XLSX workbook.
func WriteXLSX(snap *crawl.Snapshot, path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("addresses")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	for _, row := range Rows(snap) {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
