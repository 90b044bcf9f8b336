package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
)

func TestWriteSettlements(t *testing.T) {
	items := []model.MonthlySettlement{
		{WorkerID: 7, WorkerName: "Иванов", SettlementMonth: "2026-09", BaseSalary: 3000, Bonus: 450.5, TotalEarnings: 3450.5, SettlementDate: "2026-10-01", Status: "SETTLED"},
		{WorkerID: 9, WorkerName: "Petrov", SettlementMonth: "2026-09", BaseSalary: 2800, TotalEarnings: 2800},
	}

	var buf bytes.Buffer
	translate := func(key string) string { return "[" + key + "]" }
	if err := WriteSettlements(&buf, items, translate); err != nil {
		t.Fatalf("WriteSettlements вернул ошибку: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("xlsx не читается: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("листы = %v, ожидается [%s]", sheets, SheetName)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("строк = %d, ожидается 3", len(rows))
	}
	if rows[0][1] != "[col.worker]" {
		t.Errorf("заголовок = %q, ожидается переведённый ключ", rows[0][1])
	}
	if rows[1][1] != "Иванов" || rows[1][0] != "7" {
		t.Errorf("первая строка = %v", rows[1])
	}
	if rows[1][4] != "450.5" {
		t.Errorf("бонус = %q, ожидается 450.5", rows[1][4])
	}
}

func TestSettlements_EmptyWithoutTranslate(t *testing.T) {
	f, err := Settlements(nil, nil)
	if err != nil {
		t.Fatalf("Settlements вернул ошибку: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("строк = %d, ожидается только заголовок", len(rows))
	}
	if rows[0][0] != "col.id" {
		t.Errorf("заголовок = %q, ожидается ключ без перевода", rows[0][0])
	}
}
