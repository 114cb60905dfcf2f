package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/xuri/excelize/v2"
)

// Format identifies a catalog file format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromFilename picks a format from a file extension
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported catalog file type: %s (must be .json, .csv or .xlsx)", name)
	}
}

// LoadFile reads stores from a catalog file. The result is not validated;
// pass it to New.
func LoadFile(path string) ([]models.Store, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return Load(f, format)
}

// Load reads stores from r in the given format
func Load(r io.Reader, format Format) ([]models.Store, error) {
	switch format {
	case FormatJSON:
		return LoadJSON(r)
	case FormatCSV:
		return LoadCSV(r)
	case FormatXLSX:
		return LoadXLSX(r, "")
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", format)
	}
}

// storeRecord is the on-disk shape of a store, matching the web client's data file
type storeRecord struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Benefit string   `json:"benefit"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// LoadJSON reads a JSON array of {id, name, benefit, lat, lng} records
func LoadJSON(r io.Reader) ([]models.Store, error) {
	var records []storeRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode catalog JSON: %w", err)
	}

	stores := make([]models.Store, 0, len(records))
	for i, rec := range records {
		if rec.Lat == nil || rec.Lng == nil {
			return nil, fmt.Errorf("%w: row %d (%s): missing lat/lng", ErrInvalidStore, i+1, rec.Name)
		}
		stores = append(stores, models.Store{
			ID:       rec.ID,
			Name:     rec.Name,
			Benefit:  rec.Benefit,
			Location: models.GeoCoordinate{Latitude: *rec.Lat, Longitude: *rec.Lng},
		})
	}
	return stores, nil
}

// LoadCSV reads a CSV file with a header row. Recognised columns are
// id, name, benefit, lat/latitude and lng/lon/longitude. Comma and semicolon
// separators are both accepted.
func LoadCSV(r io.Reader) ([]models.Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog CSV: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = detectSeparator(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog CSV: %w", err)
	}
	return parseRows(rows)
}

// LoadXLSX reads stores from a spreadsheet. An empty sheet name means the
// first sheet of the workbook.
func LoadXLSX(r io.Reader, sheet string) ([]models.Store, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("catalog workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return parseRows(rows)
}

func detectSeparator(data []byte) rune {
	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

// columns maps header names to the fields they fill
var columns = map[string]string{
	"id":        "id",
	"name":      "name",
	"benefit":   "benefit",
	"lat":       "lat",
	"latitude":  "lat",
	"lng":       "lng",
	"lon":       "lng",
	"longitude": "lng",
}

// parseRows turns a header row plus data rows into stores
func parseRows(rows [][]string) ([]models.Store, error) {
	if len(rows) == 0 {
		return []models.Store{}, nil
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := columns[key]; ok {
			if _, seen := index[field]; !seen {
				index[field] = i
			}
		}
	}
	for _, required := range []string{"name", "lat", "lng"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("catalog header is missing the %s column", required)
		}
	}

	cell := func(row []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	stores := make([]models.Store, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// Row numbers are 1-based and count the header
		rowNum := i + 2

		lat, err := parseCoord(cell(row, "lat"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: latitude: %v", ErrInvalidStore, rowNum, err)
		}
		lng, err := parseCoord(cell(row, "lng"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: longitude: %v", ErrInvalidStore, rowNum, err)
		}

		stores = append(stores, models.Store{
			ID:       cell(row, "id"),
			Name:     cell(row, "name"),
			Benefit:  cell(row, "benefit"),
			Location: models.GeoCoordinate{Latitude: lat, Longitude: lng},
		})
	}
	return stores, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseCoord parses a decimal degree value, accepting a comma as the decimal separator
func parseCoord(val string) (float64, error) {
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(val, 64)
}
