// familytree-import seeds the relational store from an Excel workbook:
// sheets Families, Persons, Members and Parents, one row per record.
// Run with -template to write an empty workbook with the expected headers.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"familytree/internal/config"
	"familytree/internal/database"
	"familytree/internal/logger"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var sheetHeaders = map[string][]string{
	"Families": {"ID", "Name"},
	"Persons":  {"ID", "First Name", "Last Name", "Gender", "Birth Date"},
	"Members":  {"Person ID", "Family ID", "Role"},
	"Parents":  {"Person ID", "Parent ID"},
}

var sheetOrder = []string{"Families", "Persons", "Members", "Parents"}

func main() {
	file := flag.String("file", "", "workbook to import")
	template := flag.String("template", "", "write an empty import template to this path and exit")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.Log.Level, "console", "familytree-import")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *template != "" {
		if err := writeTemplate(*template); err != nil {
			log.Fatal("Failed to write template", zap.Error(err))
		}
		log.Info("Template written", zap.String("path", *template))
		return
	}

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := database.Connect(&cfg.Database, log)
	if err != nil {
		log.Fatal("Store unavailable", zap.Error(err))
	}
	defer database.Close(db)

	if err := importWorkbook(db, *file, log); err != nil {
		log.Fatal("Import failed", zap.Error(err))
	}
}

func writeTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheetOrder {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return err
			}
		}
		for col, header := range sheetHeaders[sheet] {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

func importWorkbook(db *sql.DB, path string, log *zap.Logger) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	counts := map[string]int{}
	importers := map[string]func(*sql.DB, []string) error{
		"Families": importFamily,
		"Persons":  importPerson,
		"Members":  importMember,
		"Parents":  importParent,
	}

	for _, sheet := range sheetOrder {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		for i, row := range rows {
			if i == 0 || len(row) == 0 || row[0] == "" {
				continue // header or blank
			}
			if err := importers[sheet](db, row); err != nil {
				return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
			}
			counts[sheet]++
		}
	}

	log.Info("Import finished",
		zap.Int("families", counts["Families"]),
		zap.Int("persons", counts["Persons"]),
		zap.Int("members", counts["Members"]),
		zap.Int("parent_links", counts["Parents"]),
	)
	return nil
}

func importFamily(db *sql.DB, row []string) error {
	id, err := cellInt(row, 0)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO families (id, name) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		id, cell(row, 1),
	)
	return err
}

func importPerson(db *sql.DB, row []string) error {
	id, err := cellInt(row, 0)
	if err != nil {
		return err
	}
	var birthDate *time.Time
	if raw := cell(row, 4); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("bad birth date %q: %w", raw, err)
		}
		birthDate = &t
	}
	_, err = db.Exec(
		`INSERT INTO persons (id, first_name, last_name, gender, birth_date)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET first_name = EXCLUDED.first_name,
		     last_name = EXCLUDED.last_name,
		     gender = EXCLUDED.gender,
		     birth_date = EXCLUDED.birth_date`,
		id, cell(row, 1), cell(row, 2), cell(row, 3), birthDate,
	)
	return err
}

func importMember(db *sql.DB, row []string) error {
	personID, err := cellInt(row, 0)
	if err != nil {
		return err
	}
	familyID, err := cellInt(row, 1)
	if err != nil {
		return err
	}
	role := cell(row, 2)
	switch role {
	case "pere", "mere", "enfant":
	default:
		return fmt.Errorf("bad role %q (want pere, mere or enfant)", role)
	}
	_, err = db.Exec(
		`INSERT INTO family_members (person_id, family_id, role)
		 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		personID, familyID, role,
	)
	return err
}

func importParent(db *sql.DB, row []string) error {
	personID, err := cellInt(row, 0)
	if err != nil {
		return err
	}
	parentID, err := cellInt(row, 1)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO person_parents (person_id, parent_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		personID, parentID,
	)
	return err
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func cellInt(row []string, i int) (int64, error) {
	v, err := strconv.ParseInt(cell(row, i), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q: %w", cell(row, i), err)
	}
	return v, nil
}
