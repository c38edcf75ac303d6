// Package sheet reads and writes the traits_info.xlsx workbook that drives a
// generation run: one row per trait carrying its number, type, inscription id,
// rarity and compatibility lists, plus a "none" row per category.
package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/appengine-ltd/ordgen/internal/traitdir"
)

// SheetName is the single worksheet both scaffold and loader use.
const SheetName = "Traits Information"

var headers = []string{
	"Trait Number",
	"Trait Type",
	"Trait",
	"Inscription ID",
	"Rarity (%)",
	"Avoid Traits (use Trait Numbers, comma-separated)",
	"Require Traits (use Trait Numbers, comma-separated)",
}

// Scaffold writes a template workbook for the discovered trait folders: every
// trait gets a sequential number, every category a trailing "none" row. The
// rarity and compatibility columns are left for the user to fill in.
func Scaffold(path string, categories []traitdir.Category) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("scaffold sheet: %w", err)
	}
	if err := setRow(f, 1, toCells(headers)); err != nil {
		return err
	}

	row := 2
	number := 1
	for _, category := range categories {
		for _, trait := range category.Traits {
			if err := setRow(f, row, []any{number, category.Name, trait, "", "", "", ""}); err != nil {
				return err
			}
			row++
			number++
		}
		if err := setRow(f, row, []any{number, category.Name, "none", "", "", "", ""}); err != nil {
			return err
		}
		row++
		number++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
