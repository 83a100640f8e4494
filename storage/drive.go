package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Drive uploads into a Google Drive folder and shares each file publicly.
type Drive struct {
	client   *drive.Service
	folderID string
}

// NewDrive authenticates with a service account credentials file.
func NewDrive(ctx context.Context, credentialsPath, folderID string) (*Drive, error) {
	svc, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create drive service")
	}
	return &Drive{client: svc, folderID: folderID}, nil
}

// PublicURL is the direct-download link for a Drive file id.
func PublicURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/uc?id=%s", fileID)
}

func (d *Drive) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	file := &drive.File{
		Name:     uuid.NewString() + safeExt(in.Filename),
		MimeType: in.ContentType,
	}
	if d.folderID != "" {
		file.Parents = []string{d.folderID}
	}

	created, err := d.client.Files.Create(file).Media(r).Fields("id").Context(ctx).Do()
	if err != nil {
		return PutResult{}, errors.Wrap(err, "failed to upload to drive")
	}

	_, err = d.client.Permissions.Create(created.Id, &drive.Permission{Type: "anyone", Role: "reader"}).Context(ctx).Do()
	if err != nil {
		log.Printf("⚠️  Drive: file %s uploaded but not shared: %v", created.Id, err)
	}

	return PutResult{Key: created.Id, URL: PublicURL(created.Id)}, nil
}

func (d *Drive) Delete(ctx context.Context, key string) error {
	return errors.Wrap(d.client.Files.Delete(key).Context(ctx).Do(), "failed to delete drive file")
}

func (d *Drive) String() string { return fmt.Sprintf("drive(%s)", d.folderID) }
