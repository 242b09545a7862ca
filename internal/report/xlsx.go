package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetLiveHosts   = "Live Hosts"
	sheetPortDetails = "Port Details"
)

// WriteXLSX writes the two-sheet workbook: Live Hosts (IP, hostname)
// and Port Details (one row per open port).
func WriteXLSX(hosts []Host, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetLiveHosts)
	if _, err := f.NewSheet(sheetPortDetails); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	writeRow(f, sheetLiveHosts, 1, "IP Address", "Hostname")
	f.SetCellStyle(sheetLiveHosts, "A1", "B1", headerStyle)
	f.SetColWidth(sheetLiveHosts, "A", "B", 24)
	for i, h := range hosts {
		writeRow(f, sheetLiveHosts, i+2, h.IP, h.Hostname)
	}

	writeRow(f, sheetPortDetails, 1, "IP Address", "Port", "Protocol", "State", "Service", "Product", "Version")
	f.SetCellStyle(sheetPortDetails, "A1", "G1", headerStyle)
	f.SetColWidth(sheetPortDetails, "A", "A", 18)
	f.SetColWidth(sheetPortDetails, "E", "G", 22)
	row := 2
	for _, h := range hosts {
		for _, p := range h.Ports {
			writeRow(f, sheetPortDetails, row, h.IP, p.Number, p.Protocol, p.State, p.Service, p.Product, p.Version)
			row++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for col, v := range values {
		name, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheet, name, v)
	}
}
