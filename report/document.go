package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

// Document holds the fields printed on a generated complaint document.
type Document struct {
	ReportID     string
	CreatedAt    time.Time
	ReporterName string
	ReporterNIK  string
	Phone        string
	Category     string
	District     string
	Village      string
	FullAddress  string
	Description  string
	ImageURLs    []string
}

var documentTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1f2937; margin: 40px; }
  h1 { font-size: 20px; margin-bottom: 4px; }
  .meta { color: #6b7280; font-size: 12px; margin-bottom: 24px; }
  table { width: 100%; border-collapse: collapse; font-size: 13px; }
  td { padding: 6px 8px; vertical-align: top; border-bottom: 1px solid #e5e7eb; }
  td.label { width: 180px; color: #6b7280; }
  .description { margin-top: 20px; font-size: 13px; line-height: 1.6; }
  .images img { max-width: 280px; margin: 12px 12px 0 0; border: 1px solid #e5e7eb; }
</style>
</head>
<body>
  <h1>Laporan Pengaduan Masyarakat</h1>
  <div class="meta">Nomor Laporan: {{.ReportID}} &middot; Dibuat {{.CreatedAt.Format "02 Jan 2006 15:04"}}</div>
  <table>
    <tr><td class="label">Nama Pelapor</td><td>{{.ReporterName}}</td></tr>
    <tr><td class="label">NIK</td><td>{{.ReporterNIK}}</td></tr>
    <tr><td class="label">Nomor Telepon</td><td>{{.Phone}}</td></tr>
    <tr><td class="label">Kategori</td><td>{{.Category}}</td></tr>
    <tr><td class="label">Kecamatan</td><td>{{.District}}</td></tr>
    <tr><td class="label">Kelurahan</td><td>{{.Village}}</td></tr>
    <tr><td class="label">Alamat Lengkap</td><td>{{.FullAddress}}</td></tr>
  </table>
  <div class="description">
    <strong>Deskripsi Laporan</strong>
    <p>{{.Description}}</p>
  </div>
  {{if .ImageURLs}}
  <div class="images">
    <strong>Lampiran</strong><br>
    {{range .ImageURLs}}<img src="{{.}}" alt="lampiran">{{end}}
  </div>
  {{end}}
</body>
</html>`))

// RenderDocument produces a PDF for a complaint report via Gotenberg.
func (c *Client) RenderDocument(ctx context.Context, doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render report template: %w", err)
	}
	return c.RenderHTML(ctx, buf.String())
}
