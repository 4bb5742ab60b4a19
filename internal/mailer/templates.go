package mailer

import (
	"bytes"
	"html/template"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1f2937;">
    <h2>Kode OTP Anda</h2>
    <p>Gunakan kode berikut untuk memverifikasi akun Citilyst Anda:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
    <p>Kode ini berlaku selama 5 menit. Abaikan email ini jika Anda tidak meminta kode.</p>
  </body>
</html>`))

var reportStatusTemplate = template.Must(template.New("report-status").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1f2937;">
    <h2>Status Laporan Diperbarui</h2>
    <p>Halo {{.Name}},</p>
    <p>Laporan Anda <strong>{{.ReportID}}</strong> kini berstatus <strong>{{.Status}}</strong>.</p>
    {{if .Feedback}}<p>Catatan petugas: {{.Feedback}}</p>{{end}}
    <p>Terima kasih telah menggunakan Citilyst.</p>
  </body>
</html>`))

// RenderOTP renders the OTP email body.
func RenderOTP(code string) (string, error) {
	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, struct{ Code string }{Code: code}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReportStatusData feeds the report status notification template.
type ReportStatusData struct {
	Name     string
	ReportID string
	Status   string
	Feedback string
}

// RenderReportStatus renders the report status notification body.
func RenderReportStatus(data ReportStatusData) (string, error) {
	var buf bytes.Buffer
	if err := reportStatusTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
