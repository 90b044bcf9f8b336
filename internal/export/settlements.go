// Пакет export — выгрузка расчётов мастеров в Excel (xlsx).
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
)

// ContentType — MIME-тип xlsx.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName — лист с расчётами.
const SheetName = "Settlements"

// Columns — ключи заголовков колонок в порядке вывода.
var Columns = []string{
	"col.id", "col.worker", "col.month", "col.base_salary",
	"col.bonus", "col.total_earnings", "col.settled_at", "col.status",
}

// Settlements строит книгу с расчётами. translate переводит ключи
// заголовков; nil оставляет ключи как есть.
func Settlements(items []model.MonthlySettlement, translate func(key string) string) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("создание листа: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("удаление листа по умолчанию: %w", err)
	}

	header := make([]any, len(Columns))
	for i, key := range Columns {
		if translate != nil {
			header[i] = translate(key)
		} else {
			header[i] = key
		}
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("заголовок: %w", err)
	}

	for i, s := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		row := []any{
			s.WorkerID, s.WorkerName, s.SettlementMonth, s.BaseSalary,
			s.Bonus, s.TotalEarnings, s.SettlementDate, s.Status,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("строка %d: %w", i+2, err)
		}
	}
	return f, nil
}

// WriteSettlements пишет книгу с расчётами в w.
func WriteSettlements(w io.Writer, items []model.MonthlySettlement, translate func(key string) string) error {
	f, err := Settlements(items, translate)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("запись xlsx: %w", err)
	}
	return nil
}
