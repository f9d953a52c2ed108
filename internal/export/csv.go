package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// WriteCSV writes t in the spreadsheet-friendly dialect: UTF-8 BOM, a
// "sep=;" hint line, ';' as delimiter and ',' as decimal separator.
// Fields containing the delimiter, quotes or line breaks are quoted.
func WriteCSV(w io.Writer, t Table) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(utf8BOM + "sep=;\r\n"); err != nil {
		return fmt.Errorf("write csv preamble: %w", err)
	}

	cw := csv.NewWriter(bw)
	cw.Comma = ';'
	cw.UseCRLF = true
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		record = record[:0]
		for _, cell := range row {
			record = append(record, csvText(cell))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return bw.Flush()
}

func csvText(v interface{}) string {
	if a, ok := v.(Amount); ok {
		return strings.Replace(a.Value.StringFixed(a.Places), ".", ",", 1)
	}
	return plainText(v)
}
