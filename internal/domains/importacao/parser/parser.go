package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"backoffice-backend/internal/domains/importacao/model"
)

// Supported upload formats
const (
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"
	ExtCSV  = ".csv"
)

// maxExcelSerial is 9999-12-31 in the 1900 date system
const maxExcelSerial = 2958465

// xlsReader record types holding numbers (dates are stored as numbers)
const (
	xlsNumberCell = "*record.Number"
	xlsRKCell     = "*record.Rk"
)

var (
	utf8BOM          = []byte{0xEF, 0xBB, 0xBF}
	headerCleanRegex = regexp.MustCompile(`[^a-z0-9_]+`)
	underscoreRegex  = regexp.MustCompile(`_+`)
)

// headerAliases maps common spreadsheet titles onto the column names used by the schemas
var headerAliases = map[string]string{
	"cca":                       model.ColCCACodigo,
	"codigo_cca":                model.ColCCACodigo,
	"descricao":                 model.ColDescricaoDesvio,
	"descricao_do_desvio":       model.ColDescricaoDesvio,
	"responsavel":               model.ColResponsavelInspecao,
	"responsavel_pela_inspecao": model.ColResponsavelInspecao,
	"data_do_desvio":            model.ColData,
	"admissao":                  model.ColDataAdmissao,
	"data_de_admissao":          model.ColDataAdmissao,
	"cargo":                     model.ColFuncao,
}

// Supported reports whether the file extension can be parsed
func Supported(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ExtXLSX, ExtXLS, ExtCSV:
		return true
	}
	return false
}

// Parse reads the first sheet (or the whole CSV) of an uploaded file.
// The first non-blank line is the header; rows keep their spreadsheet line number.
func Parse(fileName string, r io.Reader) ([]model.ImportRow, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !Supported(fileName) {
		return nil, model.NewUnsupportedFile(fileName)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewParseFileError(err)
	}
	if len(data) == 0 {
		return nil, model.ErrEmptyFile
	}

	var (
		records [][]string
		lines   []int
	)
	switch ext {
	case ExtXLSX:
		records, err = readXLSX(data)
	case ExtXLS:
		records, err = readXLS(data)
	case ExtCSV:
		records, lines, err = readCSV(data)
	}
	if err != nil {
		return nil, model.NewParseFileError(err)
	}

	rows := toRows(records, lines)
	if len(rows) == 0 {
		return nil, model.ErrEmptyFile
	}
	return rows, nil
}

// ========================================
// FORMAT READERS
// ========================================

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	// displayed text of a date cell depends on its number format; the raw
	// value is the date serial
	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read raw sheet %s: %w", sheets[0], err)
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	resolveDateSerials(rows, raw, date1904)
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("read first sheet: %w", err)
	}

	var out, raw [][]string
	for _, row := range sheet.GetRows() {
		var record, serials []string
		for _, cell := range row.GetCols() {
			record = append(record, cell.GetString())

			serial := ""
			switch cell.GetType() {
			case xlsNumberCell, xlsRKCell:
				serial = strconv.FormatFloat(cell.GetFloat64(), 'f', -1, 64)
			}
			serials = append(serials, serial)
		}
		out = append(out, record)
		raw = append(raw, serials)
	}

	resolveDateSerials(out, raw, false)
	return out, nil
}

// resolveDateSerials rewrites numeric cells under a date header as YYYY-MM-DD.
// raw holds the unformatted cell values, aligned with records.
func resolveDateSerials(records, raw [][]string, date1904 bool) {
	headerIdx := headerIndex(records)
	if headerIdx < 0 {
		return
	}

	for j, h := range records[headerIdx] {
		if !model.IsDateColumn(NormalizeHeader(h)) {
			continue
		}
		for i := headerIdx + 1; i < len(records); i++ {
			if i >= len(raw) || j >= len(raw[i]) || j >= len(records[i]) {
				continue
			}
			if iso, ok := serialToISO(raw[i][j], date1904); ok {
				records[i][j] = iso
			}
		}
	}
}

func serialToISO(raw string, date1904 bool) (string, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial < 1 || serial > maxExcelSerial {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// readCSV returns records and the line each one starts on; csv skips blank lines
// so line numbers are tracked explicitly
func readCSV(data []byte) ([][]string, []int, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
		if err != nil {
			return nil, nil, fmt.Errorf("decode latin-1: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return records, lines, nil
}

// sniffDelimiter picks ';' or ',' from the header line
func sniffDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if bytes.Count(first, []byte{';'}) >= bytes.Count(first, []byte{','}) && bytes.Contains(first, []byte{';'}) {
		return ';'
	}
	return ','
}

// ========================================
// ROWS
// ========================================

// toRows maps records to ImportRows keyed by normalized header. lines may be
// nil, in which case the record index gives the line number.
func toRows(records [][]string, lines []int) []model.ImportRow {
	lineOf := func(i int) int {
		if lines != nil {
			return lines[i]
		}
		return i + 1
	}

	headerIdx := headerIndex(records)
	if headerIdx < 0 {
		return nil
	}

	headers := make([]string, len(records[headerIdx]))
	for i, h := range records[headerIdx] {
		headers[i] = NormalizeHeader(h)
	}

	var rows []model.ImportRow
	for i := headerIdx + 1; i < len(records); i++ {
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(records[i]) {
				values[h] = records[i][j]
			} else {
				values[h] = ""
			}
		}
		rows = append(rows, model.ImportRow{Line: lineOf(i), Values: values})
	}

	// trailing blank rows carry no information
	for len(rows) > 0 && rows[len(rows)-1].IsEmpty() {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// headerIndex is the first non-blank record, or -1
func headerIndex(records [][]string) int {
	for i, rec := range records {
		if !blankRecord(rec) {
			return i
		}
	}
	return -1
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeader turns a column title into its schema name:
// "Descrição Desvio" -> "descricao_desvio", "CCA" -> "cca_codigo"
func NormalizeHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, h)
	if err != nil {
		s = h
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "_")
	s = headerCleanRegex.ReplaceAllString(s, "")
	s = strings.Trim(underscoreRegex.ReplaceAllString(s, "_"), "_")

	if alias, ok := headerAliases[s]; ok {
		return alias
	}
	return s
}
