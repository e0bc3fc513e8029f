//go:build ignore

// This program generates test fixture files for CopyKit.
package main

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

func main() {
	if err := generateTxt(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating sample.txt: %v\n", err)
		os.Exit(1)
	}

	if err := generateTemplate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating template.xlsx: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Test fixtures generated successfully.")
}

func generateTxt() error {
	// A realistic copy deck: multi-line blocks separated by blank lines,
	// with a run of consecutive blanks in the middle.
	content := "春季新品上市\n全场满300减50\n\n" +
		"限时秒杀\n每天上午10点开抢\n数量有限 先到先得\n\n\n" +
		"会员专享\n积分翻倍\n\n" +
		"包邮到家\n"

	return os.WriteFile("testdata/sample.txt", []byte(content), 0644)
}

func generateTemplate() error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	// A styled header row and a second column that a fill must not touch
	if err := f.SetColWidth(sheet, "A", "A", 55); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "B1", "备注"); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B1", "B1", style); err != nil {
		return err
	}

	return f.SaveAs("testdata/template.xlsx")
}
