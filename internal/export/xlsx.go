// Package export renders vendor records into spreadsheet reports.
package export

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/aisleworks/vendor-research/internal/model"
)

var vendorHeader = []string{
	"Name", "Category", "Source URL", "Website", "Phone",
	"About", "Attributes", "Social Media", "Scraped At",
}

// WriteVendorsXLSX writes one row per vendor to an XLSX file at path.
func WriteVendorsXLSX(path string, vendors []model.VendorRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Vendors")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range vendorHeader {
		header.AddCell().Value = h
	}

	for _, v := range vendors {
		row := sheet.AddRow()
		row.AddCell().Value = v.Name
		row.AddCell().Value = v.VendorType
		row.AddCell().Value = v.SourceURL
		row.AddCell().Value = v.Website
		row.AddCell().Value = v.Phone
		row.AddCell().Value = v.About
		row.AddCell().Value = joinMap(v.Attributes)
		row.AddCell().Value = joinMap(v.SocialMedia)
		if !v.ScrapedAt.IsZero() {
			row.AddCell().Value = v.ScrapedAt.Format("2006-01-02 15:04:05")
		} else {
			row.AddCell().Value = ""
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save file")
	}
	return nil
}

func joinMap(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, k+": "+v)
	}
	// Deterministic output for diffable reports.
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
