package sheet

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xuri/excelize/v2"

	"github.com/appengine-ltd/ordgen/internal/catalog"
)

// inscriptionIDPattern matches an ordinals inscription id: a 64-hex-digit
// transaction id, the letter i, and an index.
var inscriptionIDPattern = regexp.MustCompile(`^[\da-fA-F]{64}i\d+$`)

// RowErrors collects every problem found while reading the workbook, so the
// user can fix the sheet in one pass instead of replaying load-fail cycles.
type RowErrors struct {
	Problems []string
}

func (e *RowErrors) Error() string {
	if len(e.Problems) == 1 {
		return "sheet: " + e.Problems[0]
	}
	return fmt.Sprintf("sheet: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

// column keys, matched against headers leniently.
const (
	colNumber      = "trait number"
	colType        = "trait type"
	colTrait       = "trait"
	colInscription = "inscription id"
	colRarity      = "rarity"
	colAvoid       = "avoid traits"
	colRequire     = "require traits"
)

// Load reads the workbook into normalized trait records. Categories are
// ranked by first appearance, which the scaffold writes in layering order.
// Rows whose trait name is "none" become the category's none marker.
func Load(path string) ([]catalog.TraitSpec, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no trait rows below the header", path)
	}

	columns, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var (
		specs    []catalog.TraitSpec
		problems []string
		ranks    = make(map[string]int)
	)
	fail := func(rowIndex int, format string, args ...any) {
		problems = append(problems, fmt.Sprintf("row %d: %s", rowIndex, fmt.Sprintf(format, args...)))
	}

	for i, row := range rows[1:] {
		rowIndex := i + 2
		if blankRow(row) {
			continue
		}

		id, err := parseWholeNumber(cell(row, columns[colNumber]))
		if err != nil {
			fail(rowIndex, "trait number: %v", err)
			continue
		}
		traitType := strings.TrimSpace(cell(row, columns[colType]))
		traitName := strings.TrimSpace(cell(row, columns[colTrait]))
		if traitType == "" || traitName == "" {
			fail(rowIndex, "trait type and trait name are required")
			continue
		}

		inscription := strings.TrimSpace(cell(row, columns[colInscription]))
		if inscription != "" && !inscriptionIDPattern.MatchString(inscription) {
			fail(rowIndex, "invalid inscription id format")
			continue
		}

		spec := catalog.TraitSpec{
			ID:            id,
			Category:      traitType,
			Name:          traitName,
			InscriptionID: inscription,
			None:          strings.EqualFold(traitName, "none"),
		}

		if rarity := strings.TrimSpace(cell(row, columns[colRarity])); rarity != "" {
			weight, err := strconv.ParseFloat(rarity, 64)
			if err != nil {
				fail(rowIndex, "rarity should be a number or left blank for equal rarities")
				continue
			}
			if weight < 0 {
				fail(rowIndex, "rarity must not be negative")
				continue
			}
			spec.Weight = weight
			spec.Weighted = true
		}

		spec.Avoid, err = parseIDList(cell(row, columns[colAvoid]))
		if err != nil {
			fail(rowIndex, "avoid traits: %v", err)
			continue
		}
		if columns[colRequire] >= 0 {
			spec.Require, err = parseIDList(cell(row, columns[colRequire]))
			if err != nil {
				fail(rowIndex, "require traits: %v", err)
				continue
			}
		}

		rank, seen := ranks[traitType]
		if !seen {
			rank = len(ranks) + 1
			ranks[traitType] = rank
		}
		spec.Rank = rank

		specs = append(specs, spec)
	}

	if len(problems) > 0 {
		return nil, &RowErrors{Problems: problems}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%s: every row was blank", path)
	}
	return specs, nil
}

// resolveColumns maps the canonical columns onto the header row, tolerating
// small typos and the long parenthesised captions the scaffold writes. The
// require column is optional for sheets made by older scaffolds.
func resolveColumns(header []string) (map[string]int, error) {
	columns := map[string]int{
		colNumber:      -1,
		colType:        -1,
		colTrait:       -1,
		colInscription: -1,
		colRarity:      -1,
		colAvoid:       -1,
		colRequire:     -1,
	}

	for i, raw := range header {
		name := normalizeHeader(raw)
		if name == "" {
			continue
		}
		for key, at := range columns {
			if at >= 0 {
				continue
			}
			dist := levenshtein.ComputeDistance(name, key)
			if dist <= headerDistanceLimit(len(key)) {
				columns[key] = i
				break
			}
		}
	}

	var missing []string
	for key, at := range columns {
		if at < 0 && key != colRequire {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("header row is missing column(s): %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

// normalizeHeader lowercases a header cell and drops any parenthesised
// caption, so "Avoid Traits (use Trait Numbers, comma-separated)" matches
// "avoid traits".
func normalizeHeader(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if cut := strings.Index(name, "("); cut >= 0 {
		name = name[:cut]
	}
	return strings.Join(strings.Fields(name), " ")
}

func headerDistanceLimit(length int) int {
	switch {
	case length <= 5:
		return 0
	case length <= 8:
		return 1
	default:
		return 2
	}
}

// parseIDList splits a comma-separated list of trait numbers. Spreadsheet
// cells often come back as floats ("3.0"); whole values are accepted.
func parseIDList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := parseWholeNumber(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseWholeNumber(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty value, only whole numbers are allowed")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry %q, only numbers are allowed", raw)
	}
	if value != float64(int(value)) {
		return 0, fmt.Errorf("invalid entry %q, only whole numbers are allowed", raw)
	}
	return int(value), nil
}

func blankRow(row []string) bool {
	for _, cellValue := range row {
		if strings.TrimSpace(cellValue) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return row[index]
}
