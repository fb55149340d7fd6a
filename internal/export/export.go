// Package export writes the bookmark list to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Sheet names.
const (
	SheetBookmarks   = "Bookmarks"
	SheetIngredients = "Ingredients"
)

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteBookmarks writes one row per bookmark to the Bookmarks sheet and
// one row per ingredient to the Ingredients sheet.
func WriteBookmarks(w io.Writer, bookmarks []*domain.Recipe) error {
	f, err := build(bookmarks)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// SaveBookmarks is WriteBookmarks to a file.
func SaveBookmarks(path string, bookmarks []*domain.Recipe) error {
	f, err := build(bookmarks)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func build(bookmarks []*domain.Recipe) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetBookmarks); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetIngredients); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: add sheet: %w", err)
	}

	if err := writeRecipes(f, bookmarks); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeIngredients(f, bookmarks); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeRecipes(f *excelize.File, bookmarks []*domain.Recipe) error {
	sw, err := f.NewStreamWriter(SheetBookmarks)
	if err != nil {
		return fmt.Errorf("export: stream %s: %w", SheetBookmarks, err)
	}
	header := []interface{}{
		"id", "title", "publisher", "cooking_time", "servings", "source_url", "image_url", "user_generated",
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, r := range bookmarks {
		row := []interface{}{
			r.ID, r.Title, r.Publisher, r.CookingTime, r.Servings, r.SourceURL, r.ImageURL, r.UserGenerated(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func writeIngredients(f *excelize.File, bookmarks []*domain.Recipe) error {
	sw, err := f.NewStreamWriter(SheetIngredients)
	if err != nil {
		return fmt.Errorf("export: stream %s: %w", SheetIngredients, err)
	}
	if err := sw.SetRow("A1", []interface{}{"recipe_id", "quantity", "unit", "description"}); err != nil {
		return err
	}
	line := 2
	for _, r := range bookmarks {
		for _, ing := range r.Ingredients {
			var qty interface{} = ""
			if ing.Quantity != nil {
				qty = *ing.Quantity
			}
			cell, _ := excelize.CoordinatesToCellName(1, line)
			if err := sw.SetRow(cell, []interface{}{r.ID, qty, ing.Unit, ing.Description}); err != nil {
				return err
			}
			line++
		}
	}
	return sw.Flush()
}
