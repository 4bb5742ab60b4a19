package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/GenQServe/citilyst-backend/internal/districts"
	"github.com/GenQServe/citilyst-backend/internal/mailer"
	"github.com/GenQServe/citilyst-backend/internal/storage"
	"github.com/GenQServe/citilyst-backend/internal/users"
	"github.com/GenQServe/citilyst-backend/internal/villages"
	"github.com/GenQServe/citilyst-backend/jobs"
	"github.com/GenQServe/citilyst-backend/report"
)

var (
	// ErrTooManyImages is returned when more than the allowed attachments are sent.
	ErrTooManyImages = errors.New("reports: too many images")
	// ErrInvalidStatus is returned for an unknown review status value.
	ErrInvalidStatus = errors.New("reports: invalid status")
	// ErrCategoryNotFound is returned when the referenced category is missing.
	ErrCategoryNotFound = errors.New("reports: category not found")
	// ErrDistrictNotFound is returned when the referenced district is missing.
	ErrDistrictNotFound = errors.New("reports: district not found")
	// ErrVillageNotFound is returned when the referenced village is missing.
	ErrVillageNotFound = errors.New("reports: village not found")
)

// MaxImages is the attachment limit per report.
const MaxImages = 2

// RepositoryPort is the persistence surface the service depends on.
type RepositoryPort interface {
	Create(ctx context.Context, rep Report) (Report, error)
	Get(ctx context.Context, id string) (Report, error)
	List(ctx context.Context) ([]Report, error)
	ListByUser(ctx context.Context, userID string) ([]Report, error)
	UpdateStatus(ctx context.Context, id string, status Status, feedback string) (Report, error)
	Delete(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, c Category) (Category, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// UserPort resolves reporters.
type UserPort interface {
	FindByID(ctx context.Context, id string) (users.User, error)
}

// DistrictPort resolves districts.
type DistrictPort interface {
	Get(ctx context.Context, id string) (districts.District, error)
}

// VillagePort resolves villages.
type VillagePort interface {
	Get(ctx context.Context, id string) (villages.Village, error)
}

// Uploader pushes attachments and generated documents to object storage.
type Uploader interface {
	Configured() bool
	UploadImage(ctx context.Context, filename string, content io.Reader, folder string) (*storage.UploadResult, error)
	UploadRaw(ctx context.Context, filename string, content io.Reader, folder string) (*storage.UploadResult, error)
}

// DocumentRenderer turns a report into a PDF.
type DocumentRenderer interface {
	RenderDocument(ctx context.Context, doc report.Document) ([]byte, error)
}

// EmailQueue enqueues status notification emails.
type EmailQueue interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// SubmitInput carries a new report submission.
type SubmitInput struct {
	UserID      string
	CategoryID  string
	DistrictID  string
	VillageID   string
	Description string
	ImageURLs   []string
}

// UploadFile is one attachment received from a multipart request.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// Service implements report business logic.
type Service struct {
	repo      RepositoryPort
	userRepo  UserPort
	districts DistrictPort
	villages  VillagePort
	uploader  Uploader
	renderer  DocumentRenderer
	queue     EmailQueue
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the reports service.
func NewService(repo RepositoryPort, userRepo UserPort, districtRepo DistrictPort, villageRepo VillagePort, uploader Uploader, renderer DocumentRenderer, queue EmailQueue, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		userRepo:  userRepo,
		districts: districtRepo,
		villages:  villageRepo,
		uploader:  uploader,
		renderer:  renderer,
		queue:     queue,
		logger:    logger,
		now:       time.Now,
	}
}

// UploadImages stores up to MaxImages attachments and returns their URLs.
func (s *Service) UploadImages(ctx context.Context, files []UploadFile) ([]string, error) {
	if len(files) > MaxImages {
		return nil, ErrTooManyImages
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		result, err := s.uploader.UploadImage(ctx, f.Name, f.Content, "citilyst/reports")
		if err != nil {
			return nil, fmt.Errorf("upload image %s: %w", f.Name, err)
		}
		urls = append(urls, result.SecureURL)
	}
	return urls, nil
}

// Submit validates references, renders the complaint document, and stores the
// report in pending state.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Report, error) {
	if len(in.ImageURLs) > MaxImages {
		return Report{}, ErrTooManyImages
	}
	reporter, err := s.userRepo.FindByID(ctx, in.UserID)
	if err != nil {
		return Report{}, err
	}
	category, err := s.repo.GetCategory(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Report{}, ErrCategoryNotFound
		}
		return Report{}, err
	}
	district, err := s.districts.Get(ctx, in.DistrictID)
	if err != nil {
		if errors.Is(err, districts.ErrNotFound) {
			return Report{}, ErrDistrictNotFound
		}
		return Report{}, err
	}
	village, err := s.villages.Get(ctx, in.VillageID)
	if err != nil {
		if errors.Is(err, villages.ErrNotFound) {
			return Report{}, ErrVillageNotFound
		}
		return Report{}, err
	}

	rep := Report{
		ID:          uuid.NewString(),
		UserID:      reporter.ID,
		CategoryID:  category.ID,
		DistrictID:  district.ID,
		VillageID:   village.ID,
		Description: in.Description,
		FullAddress: composeAddress(reporter.Address, village.Name, district.Name),
		ImageURLs:   in.ImageURLs,
		Status:      StatusPending,
	}

	if docURL, err := s.renderAndUpload(ctx, rep, reporter, category.Name, district.Name, village.Name); err != nil {
		s.logger.Warn("generate report document", slog.String("report_id", rep.ID), slog.Any("error", err))
	} else {
		rep.DocumentURL = docURL
	}

	return s.repo.Create(ctx, rep)
}

// Get loads one report.
func (s *Service) Get(ctx context.Context, id string) (Report, error) {
	return s.repo.Get(ctx, id)
}

// List returns all reports.
func (s *Service) List(ctx context.Context) ([]Report, error) {
	return s.repo.List(ctx)
}

// ListByUser returns the reports submitted by one user.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Report, error) {
	return s.repo.ListByUser(ctx, userID)
}

// UpdateStatus transitions a report and notifies the reporter by email.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status, feedback string) (Report, error) {
	if !status.Valid() {
		return Report{}, ErrInvalidStatus
	}
	rep, err := s.repo.UpdateStatus(ctx, id, status, feedback)
	if err != nil {
		return Report{}, err
	}
	if err := s.notifyStatus(ctx, rep); err != nil {
		s.logger.Error("notify report status", slog.String("report_id", rep.ID), slog.Any("error", err))
	}
	return rep, nil
}

// Delete removes a report.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CreateCategory adds a new report category.
func (s *Service) CreateCategory(ctx context.Context, name, description string) (Category, error) {
	return s.repo.CreateCategory(ctx, Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
	})
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// UpdateCategory renames a category.
func (s *Service) UpdateCategory(ctx context.Context, id, name, description string) (Category, error) {
	return s.repo.UpdateCategory(ctx, Category{ID: id, Name: name, Description: description})
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) renderAndUpload(ctx context.Context, rep Report, reporter users.User, categoryName, districtName, villageName string) (string, error) {
	if s.renderer == nil || s.uploader == nil || !s.uploader.Configured() {
		return "", errors.New("document pipeline not configured")
	}
	pdf, err := s.renderer.RenderDocument(ctx, report.Document{
		ReportID:     rep.ID,
		CreatedAt:    s.now(),
		ReporterName: reporter.Name,
		ReporterNIK:  reporter.NIK,
		Phone:        reporter.PhoneNumber,
		Category:     categoryName,
		District:     districtName,
		Village:      villageName,
		FullAddress:  rep.FullAddress,
		Description:  rep.Description,
		ImageURLs:    rep.ImageURLs,
	})
	if err != nil {
		return "", err
	}
	result, err := s.uploader.UploadRaw(ctx, fmt.Sprintf("report-%s.pdf", rep.ID), bytes.NewReader(pdf), "citilyst/documents")
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}

func (s *Service) notifyStatus(ctx context.Context, rep Report) error {
	if s.queue == nil {
		return nil
	}
	reporter, err := s.userRepo.FindByID(ctx, rep.UserID)
	if err != nil {
		return err
	}
	body, err := mailer.RenderReportStatus(mailer.ReportStatusData{
		Name:     reporter.Name,
		ReportID: rep.ID,
		Status:   string(rep.Status),
		Feedback: rep.Feedback,
	})
	if err != nil {
		return err
	}
	_, err = s.queue.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      reporter.Email,
		Subject: "Pembaruan Status Laporan Anda",
		Body:    body,
	})
	return err
}

func composeAddress(base, villageName, districtName string) string {
	if base == "" {
		return fmt.Sprintf("Kel. %s, Kec. %s", villageName, districtName)
	}
	return fmt.Sprintf("%s, Kel. %s, Kec. %s", base, villageName, districtName)
}
