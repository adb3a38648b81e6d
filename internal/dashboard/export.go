package dashboard

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/storage"
)

// ContentTypeCSV is the media type of participant exports.
const ContentTypeCSV = "text/csv"

var participantHeader = []string{
	"registration_id", "first_name", "last_name", "email", "phone",
	"participant_type", "registration_type", "registration_date", "attendance_status",
}

// ReportUploader stores a generated report and returns a download URL.
type ReportUploader interface {
	UploadReport(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Report is a generated participant export. URL is set when it was uploaded, otherwise
// Body holds the CSV.
type Report struct {
	Filename string
	URL      string
	Body     []byte
}

// Exporter renders participant lists as CSV, uploading them when storage is configured.
type Exporter struct {
	svc      *Service
	uploader ReportUploader
	now      func() time.Time
	logger   *zap.Logger
}

// NewExporter creates an exporter. uploader may be nil to always stream the CSV.
func NewExporter(svc *Service, uploader ReportUploader, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{svc: svc, uploader: uploader, now: time.Now, logger: logger}
}

// WriteParticipantsCSV writes rows with a header line.
func WriteParticipantsCSV(w io.Writer, rows []models.ParticipantRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(participantHeader); err != nil {
		return err
	}
	for _, p := range rows {
		record := []string{
			p.RegistrationID.String(),
			p.FirstName,
			p.LastName,
			p.Email,
			p.Phone,
			p.Type,
			p.RegistrationType,
			p.RegistrationDate.UTC().Format(time.RFC3339),
			p.AttendanceStatus,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export builds the participant CSV of a dashboard.
func (x *Exporter) Export(ctx context.Context, dashboardID uuid.UUID) (*Report, error) {
	eventID, _, err := x.svc.store.Locate(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	rows, err := x.svc.store.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteParticipantsCSV(&buf, rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	at := x.now()
	report := &Report{Filename: "participants-" + strconv.FormatInt(at.Unix(), 10) + ".csv"}
	if x.uploader == nil {
		report.Body = buf.Bytes()
		return report, nil
	}
	key := storage.ReportKey(eventID.String(), at)
	url, err := x.uploader.UploadReport(ctx, key, ContentTypeCSV, bytes.NewReader(buf.Bytes()))
	if err != nil {
		x.logger.Warn("report upload failed, streaming instead", zap.Error(err), zap.String("key", key))
		report.Body = buf.Bytes()
		return report, nil
	}
	report.URL = url
	return report, nil
}
