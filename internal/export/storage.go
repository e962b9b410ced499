package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"saldo/internal/services"
)

// uploadTimeout bounds a single object upload.
const uploadTimeout = 2 * time.Minute

// Uploader stores an object and returns its URI.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// GCSUploader writes objects to a Google Cloud Storage bucket. It assumes
// Application Default Credentials are configured.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

// NewGCSUploader creates a storage client for bucket.
func NewGCSUploader(ctx context.Context, bucket string) (*GCSUploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket}, nil
}

// Upload copies r into objectName and returns its gs:// URI.
func (u *GCSUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := u.client.Bucket(u.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy to GCS writer: %w", err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", u.bucket, objectName), nil
}

// Close releases the storage client.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

// Exporter renders reports and hands them to an Uploader.
type Exporter struct {
	uploader Uploader
	now      func() time.Time
}

// NewExporter creates an Exporter. A nil uploader disables uploads.
func NewExporter(uploader Uploader) *Exporter {
	return &Exporter{uploader: uploader, now: time.Now}
}

// Enabled reports whether uploads are configured.
func (e *Exporter) Enabled() bool {
	return e != nil && e.uploader != nil
}

// Upload renders report as CSV and stores it under the user's prefix.
func (e *Exporter) Upload(ctx context.Context, userID string, report *services.ReportResult) (string, error) {
	if !e.Enabled() {
		return "", fmt.Errorf("report upload is not configured")
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, report); err != nil {
		return "", err
	}
	return e.uploader.Upload(ctx, ObjectName(userID, report, e.now()), "text/csv", &buf)
}

// ObjectName returns the storage key of a report export.
func ObjectName(userID string, report *services.ReportResult, at time.Time) string {
	return fmt.Sprintf("reports/%s/%s_%s_%s_by-%s_%s.csv",
		userID,
		report.StartDate.Format(dateFormat),
		report.EndDate.Format(dateFormat),
		report.Type,
		report.GroupBy,
		at.UTC().Format("20060102T150405Z"),
	)
}
