package utils

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	return Contains(df.Names(), name)
}

// NamedFrame 导出到Excel时的一个工作表
type NamedFrame struct {
	Sheet string
	Frame dataframe.DataFrame
}

// BuildWorkbook 把多个DataFrame写入同一个工作簿，每个DataFrame一个工作表
func BuildWorkbook(sheets []NamedFrame) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, nf := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", nf.Sheet); err != nil {
				f.Close()
				return nil, fmt.Errorf("重命名工作表失败: %w", err)
			}
		} else if _, err := f.NewSheet(nf.Sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("创建工作表%s失败: %w", nf.Sheet, err)
		}
		if err := writeFrame(f, nf.Sheet, nf.Frame); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeFrame(f *excelize.File, sheetName string, df dataframe.DataFrame) error {
	// 写入列名
	colNames := df.Names()
	for i, name := range colNames {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("写入表头失败: %w", err)
		}
	}

	// 写入数据
	for colIdx, colName := range colNames {
		col := df.Col(colName)
		for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, col.Val(rowIdx)); err != nil {
				return fmt.Errorf("写入数据失败: %w", err)
			}
		}
	}
	return nil
}

// SaveToExcel 将多个DataFrame保存为Excel文件
func SaveToExcel(sheets []NamedFrame, filePath string) error {
	f, err := BuildWorkbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}

// WriteExcel 将多个DataFrame以xlsx格式写入w(HTTP下载)
func WriteExcel(sheets []NamedFrame, w io.Writer) error {
	f, err := BuildWorkbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("写出Excel失败: %w", err)
	}
	return nil
}
