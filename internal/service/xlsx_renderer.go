package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/moondec/syllabus/internal/model"
)

var ErrXLSXGenerateFail = errors.New("nie udało się wygenerować pliku Excel")

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// xlsxRenderer 本地渲染 Excel，不经过渲染服务
//
// 输出格式：
//   - Sheet "Sylabus"：基本信息与叙述字段，两列（字段名 | 值）
//   - Sheet "Godziny"：全日制 / 非全日制学时表，合计原样抄录不计算
//   - Sheet "Efekty"：各类别已选符号及目录描述
type xlsxRenderer struct{}

// NewXLSXRenderer 本地 Excel 渲染器，供命令行离线导出使用
func NewXLSXRenderer() DocumentRenderer { return xlsxRenderer{} }

func (xlsxRenderer) Render(_ context.Context, rec *model.SyllabusRecord, lang model.Language, _ string) (*model.RenderedDocument, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newXLSXStyles(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrXLSXGenerateFail, err)
	}

	writeRecordSheet(f, styles, rec, lang)
	writeHoursSheet(f, styles, rec)
	writeOutcomesSheet(f, styles, rec)

	idx, _ := f.GetSheetIndex(sheetRecord)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrXLSXGenerateFail, err)
	}

	return &model.RenderedDocument{
		Content:     buf.Bytes(),
		ContentType: xlsxContentType,
		FileName:    exportFileName(rec, "xlsx"),
	}, nil
}

const (
	sheetRecord   = "Sylabus"
	sheetHours    = "Godziny"
	sheetOutcomes = "Efekty"
)

type xlsxStyles struct {
	header int
	wrap   int
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return xlsxStyles{}, err
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return xlsxStyles{}, err
	}
	return xlsxStyles{header: header, wrap: wrap}, nil
}

func writeRecordSheet(f *excelize.File, st xlsxStyles, rec *model.SyllabusRecord, lang model.Language) {
	_, _ = f.NewSheet(sheetRecord)
	f.SetColWidth(sheetRecord, "A", "A", 36)
	f.SetColWidth(sheetRecord, "B", "B", 90)

	f.SetCellValue(sheetRecord, "A1", "Pole")
	f.SetCellValue(sheetRecord, "B1", "Wartość")
	f.SetCellStyle(sheetRecord, "A1", "B1", st.header)

	row := 2
	f.SetCellValue(sheetRecord, cell("A", row), "Język")
	f.SetCellValue(sheetRecord, cell("B", row), string(lang))
	row++

	for _, fd := range model.FieldCatalog() {
		if fd.Group != model.GroupIdentity && fd.Group != model.GroupNarrative {
			continue
		}
		f.SetCellValue(sheetRecord, cell("A", row), fd.Label)
		f.SetCellValue(sheetRecord, cell("B", row), rec.Get(fd.Key))
		f.SetCellStyle(sheetRecord, cell("B", row), cell("B", row), st.wrap)
		row++
	}

	if lb := rec.Get(model.FieldLegalBasis); lb != "" {
		f.SetCellValue(sheetRecord, cell("A", row), "Podstawa prawna")
		f.SetCellValue(sheetRecord, cell("B", row), lb)
		f.SetCellStyle(sheetRecord, cell("B", row), cell("B", row), st.wrap)
	}
}

func writeHoursSheet(f *excelize.File, st xlsxStyles, rec *model.SyllabusRecord) {
	_, _ = f.NewSheet(sheetHours)
	f.SetColWidth(sheetHours, "A", "A", 24)
	f.SetColWidth(sheetHours, "B", "C", 18)

	f.SetCellValue(sheetHours, "A1", "Forma zajęć")
	f.SetCellValue(sheetHours, "B1", "Stacjonarne")
	f.SetCellValue(sheetHours, "C1", "Niestacjonarne")
	f.SetCellStyle(sheetHours, "A1", "C1", st.header)

	for i, activity := range model.HourActivities {
		row := i + 2
		f.SetCellValue(sheetHours, cell("A", row), model.HourActivityLabel(activity))
		f.SetCellValue(sheetHours, cell("B", row), rec.Get(model.HourField(true, activity)))
		f.SetCellValue(sheetHours, cell("C", row), rec.Get(model.HourField(false, activity)))
	}
}

func writeOutcomesSheet(f *excelize.File, st xlsxStyles, rec *model.SyllabusRecord) {
	_, _ = f.NewSheet(sheetOutcomes)
	f.SetColWidth(sheetOutcomes, "A", "A", 10)
	f.SetColWidth(sheetOutcomes, "B", "B", 14)
	f.SetColWidth(sheetOutcomes, "C", "C", 80)
	f.SetColWidth(sheetOutcomes, "D", "D", 30)

	headers := []string{"Kategoria", "Symbol", "Opis", "Weryfikacja"}
	for i, h := range headers {
		f.SetCellValue(sheetOutcomes, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetOutcomes, "A1", cell(colName(len(headers)-1), 1), st.header)

	row := 2
	for _, cat := range model.OutcomeCategories {
		selected := DecodeSymbols(rec.Get(model.SymbolField(cat)))
		if len(selected) == 0 {
			continue
		}
		described := make(map[string]model.OutcomeOption)
		for _, opt := range rec.AvailableOutcomes.Options(cat) {
			described[opt.Symbol] = opt
		}
		// 按用户选择顺序输出；目录中没有的符号只写符号本身
		for _, sym := range selected {
			opt := described[sym]
			f.SetCellValue(sheetOutcomes, cell("A", row), string(cat))
			f.SetCellValue(sheetOutcomes, cell("B", row), sym)
			f.SetCellValue(sheetOutcomes, cell("C", row), opt.Description)
			f.SetCellValue(sheetOutcomes, cell("D", row), opt.Verification)
			f.SetCellStyle(sheetOutcomes, cell("C", row), cell("C", row), st.wrap)
			row++
		}
	}
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
