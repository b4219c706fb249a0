package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"

	"crime_records_go/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"gorm.io/gorm"
)

// getChromePath returns the Chrome executable path from environment variable
func getChromePath() string {
	return os.Getenv("CHROME_PATH")
}

var dossierTemplate = template.Must(template.New("dossier").Parse(`
<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Georgia, serif; margin: 0; color: #1a1a1a; }
h1 { font-size: 18pt; border-bottom: 2px solid #1a1a1a; padding-bottom: 6px; }
h2 { font-size: 13pt; margin-top: 24px; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #999; padding: 6px 10px; font-size: 10pt; text-align: left; }
.meta { color: #555; font-size: 9pt; }
</style>
</head>
<body>
<h1>Ficha de persona de interes</h1>
<p class="meta">Sector: {{.SectorName}} / Subsector: {{.SubsectorName}}</p>
<h2>Identificacion</h2>
<table>
<tr><th>Nombre completo</th><td>{{.Record.FullName}}</td></tr>
<tr><th>Alias</th><td>{{.Record.Alias}}</td></tr>
<tr><th>Documento</th><td>{{.Record.DocumentType}} {{.Record.DocumentNumber}}</td></tr>
</table>
{{if .Record.Observations}}
<h2>Observaciones</h2>
<p>{{.Record.Observations}}</p>
{{end}}
{{if .Details}}
<h2>Detalles</h2>
<table>
{{range $k, $v := .Details}}<tr><th>{{$k}}</th><td>{{$v}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

// BuildPersonDossierHTML renders the printable dossier for a person record
func BuildPersonDossierHTML(db *gorm.DB, record *models.PersonRecord) (string, error) {
	subsectorName := ""
	sectorName := ""
	if record.Subsector != nil {
		subsectorName = record.Subsector.Name
		if record.Subsector.ParentID != nil {
			if sector, err := GetNode(db, *record.Subsector.ParentID); err == nil {
				sectorName = sector.Name
			}
		}
	}

	var buf bytes.Buffer
	err := dossierTemplate.Execute(&buf, map[string]interface{}{
		"Record":        record,
		"Details":       map[string]interface{}(record.Details),
		"SectorName":    sectorName,
		"SubsectorName": subsectorName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render dossier template: %w", err)
	}
	return buf.String(), nil
}

// GeneratePersonDossierPDF renders the dossier HTML to PDF using headless Chrome
func GeneratePersonDossierPDF(db *gorm.DB, recordID string) ([]byte, error) {
	record, err := GetPersonRecord(db, recordID)
	if err != nil {
		return nil, err
	}

	htmlContent, err := BuildPersonDossierHTML(db, record)
	if err != nil {
		return nil, err
	}
	return renderPDF(htmlContent)
}

// renderPDF drives headless Chrome to print htmlContent as a letter-size PDF
func renderPDF(htmlContent string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)

	// Check for custom Chrome path (for headless-shell in Docker)
	if chromePath := getChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// Letter size with one-inch margins
	const paperWidth, paperHeight = 8.5, 11.0
	const margin = 1.0

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		// Wait for content to render
		chromedp.Sleep(100),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}
