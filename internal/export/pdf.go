package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dentalog/dentalog/internal/i18n"
	"github.com/dentalog/dentalog/internal/records"
)

// PDFExporter wraps Gotenberg interactions for receipt and report exports.
type PDFExporter struct {
	Endpoint string
	Client   *http.Client
}

// Render sends HTML content to Gotenberg and returns the PDF bytes.
func (p *PDFExporter) Render(ctx context.Context, html string, landscape bool) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := writer.WriteField("waitDelay", "500"); err != nil {
		return nil, err
	}
	if landscape {
		if err := writer.WriteField("landscape", "true"); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}

	return io.ReadAll(resp.Body)
}

// Receipts and reports carry Georgian text, so the documents pull in a font
// with Georgian glyph coverage instead of relying on whatever Chromium ships.
const fontStyle = `@import url('https://fonts.googleapis.com/css2?family=Noto+Sans+Georgian:wght@400;600&display=swap');body{font-family:'Noto Sans Georgian',sans-serif;}`

// buildReceiptHTML renders a single visit as a client receipt.
func buildReceiptHTML(rec records.Record, lang i18n.Lang, clinicName, managerName string) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString(fontStyle)
	b.WriteString("body{margin:32px;}h1{font-size:22px;margin-bottom:4px;}.manager{color:#555;font-size:13px;margin-bottom:16px;}.detail{font-size:14px;margin:4px 0;}table{width:100%;border-collapse:collapse;margin-top:16px;}th,td{border:1px solid #ddd;padding:6px;text-align:left;}th{background:#f5f5f5;}td.qty{text-align:right;}.notes{margin-top:16px;font-size:13px;}")
	b.WriteString("</style></head><body>")

	title := clinicName
	if title == "" {
		title = "Clinic"
	}
	b.WriteString("<h1>")
	b.WriteString(templateEscape(title))
	b.WriteString("</h1>")
	if managerName != "" {
		b.WriteString("<p class=\"manager\">")
		b.WriteString(templateEscape(i18n.T(lang, "manager") + ": " + managerName))
		b.WriteString("</p>")
	}

	writeDetail(&b, i18n.T(lang, "client"), rec.Name+" "+rec.Surname)
	writeDetail(&b, i18n.T(lang, "mobile"), rec.Mobile)
	writeDetail(&b, i18n.T(lang, "date"), i18n.FormatDate(rec.Date, lang))
	writeDetail(&b, i18n.T(lang, "total"), i18n.FormatMoney(rec.Money, lang))

	rows := materialRows(rec, lang)
	if len(rows) > 0 {
		b.WriteString("<table><thead><tr><th>")
		b.WriteString(templateEscape(i18n.T(lang, "materials")))
		b.WriteString("</th><th>")
		b.WriteString(templateEscape(i18n.T(lang, "count")))
		b.WriteString("</th></tr></thead><tbody>")
		for _, row := range rows {
			b.WriteString("<tr><td>")
			b.WriteString(templateEscape(row.label))
			b.WriteString("</td><td class=\"qty\">")
			b.WriteString(fmt.Sprintf("%d", row.qty))
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table>")
	}

	if rec.Notes != "" {
		b.WriteString("<p class=\"notes\"><strong>")
		b.WriteString(templateEscape(i18n.T(lang, "notes")))
		b.WriteString(":</strong> ")
		b.WriteString(templateEscape(rec.Notes))
		b.WriteString("</p>")
	}

	b.WriteString("</body></html>")
	return b.String()
}

// buildReportHTML renders the filtered record set as a landscape table.
func buildReportHTML(recs []records.Record, lang i18n.Lang, clinicName, managerName string) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString(fontStyle)
	b.WriteString("body{margin:24px;}h1{font-size:18px;margin-bottom:4px;}.manager{color:#555;font-size:12px;margin-bottom:12px;}table{width:100%;border-collapse:collapse;font-size:10px;}th,td{border:1px solid #ddd;padding:4px;text-align:left;}th{background:#1e4f5c;color:#fff;}tr:nth-child(even){background:#f7f9fa;}")
	b.WriteString("</style></head><body>")

	title := clinicName
	if title == "" {
		title = defaultReportTitle(lang)
	}
	b.WriteString("<h1>")
	if lang == i18n.LangKA {
		b.WriteString(templateEscape(title + " ანგარიში"))
	} else {
		b.WriteString(templateEscape(title + " report"))
	}
	b.WriteString("</h1>")
	if managerName != "" {
		b.WriteString("<p class=\"manager\">")
		b.WriteString(templateEscape(i18n.T(lang, "manager") + ": " + managerName))
		b.WriteString("</p>")
	}

	b.WriteString("<table><thead><tr>")
	for _, column := range LocalizedHeader(lang) {
		b.WriteString("<th>")
		b.WriteString(templateEscape(column))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, rec := range recs {
		b.WriteString("<tr>")
		for _, cell := range DisplayRow(rec, lang) {
			b.WriteString("<td>")
			b.WriteString(templateEscape(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	b.WriteString("</body></html>")
	return b.String()
}

func defaultReportTitle(lang i18n.Lang) string {
	if lang == i18n.LangKA {
		return "კლინიკის"
	}
	return "Clinic"
}

func writeDetail(b *strings.Builder, label, value string) {
	b.WriteString("<p class=\"detail\"><strong>")
	b.WriteString(templateEscape(label))
	b.WriteString(":</strong> ")
	b.WriteString(templateEscape(value))
	b.WriteString("</p>")
}

type materialRow struct {
	label string
	qty   int
}

// materialRows lists the fixed counters above zero, then the custom entries.
func materialRows(rec records.Record, lang i18n.Lang) []materialRow {
	var rows []materialRow
	for _, key := range records.MaterialKeys {
		if qty := rec.MaterialCount(key); qty > 0 {
			rows = append(rows, materialRow{label: i18n.T(lang, materialLabelKey(key)), qty: qty})
		}
	}
	for _, item := range rec.CustomMaterials {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		rows = append(rows, materialRow{label: item.Name, qty: item.Qty})
	}
	return rows
}

// ReceiptFilename names a single-visit download after the client and date.
func ReceiptFilename(rec records.Record) string {
	return fmt.Sprintf("%s_%s_%s.pdf", sanitizeFilename(rec.Name), sanitizeFilename(rec.Surname), rec.Date)
}

// ReportFilename names the filtered-set download after the export date.
func ReportFilename(now time.Time) string {
	return fmt.Sprintf("Clinic_Report_%s.pdf", i18n.ToISODate(now))
}

func sanitizeFilename(part string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "\"", "", "\n", "", "\r", "")
	return replacer.Replace(part)
}

func templateEscape(v string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(v)
}
