package mailer_test

import (
	"strings"
	"testing"

	"github.com/GenQServe/citilyst-backend/internal/mailer"
)

func TestRenderOTP(t *testing.T) {
	body, err := mailer.RenderOTP("483920")
	if err != nil {
		t.Fatalf("render otp: %v", err)
	}
	if !strings.Contains(body, "483920") {
		t.Fatalf("expected code in body")
	}
	if !strings.Contains(body, "Kode OTP") {
		t.Fatalf("expected otp heading in body")
	}
}

func TestRenderReportStatus(t *testing.T) {
	body, err := mailer.RenderReportStatus(mailer.ReportStatusData{
		Name:     "Warga Satu",
		ReportID: "rep-123",
		Status:   "resolved",
		Feedback: "Sudah diperbaiki",
	})
	if err != nil {
		t.Fatalf("render status: %v", err)
	}
	for _, want := range []string{"Warga Satu", "rep-123", "resolved", "Sudah diperbaiki"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body", want)
		}
	}
}

func TestRenderReportStatusOmitsEmptyFeedback(t *testing.T) {
	body, err := mailer.RenderReportStatus(mailer.ReportStatusData{
		Name:     "Warga",
		ReportID: "rep-1",
		Status:   "in_progress",
	})
	if err != nil {
		t.Fatalf("render status: %v", err)
	}
	if strings.Contains(body, "Catatan petugas") {
		t.Fatalf("feedback block should be omitted when empty")
	}
}
