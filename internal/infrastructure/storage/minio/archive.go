package minio

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/legajos-penal/internal/application/upload"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

const (
	pdfContentType     = "application/pdf"
	contentHashMetaKey = "content-hash"
	untokenizedPrefix  = "sin-token"
)

// Archive stores a copy of each persisted filing under <token>/<filename>.
type Archive struct {
	client *Client
	logger logging.Logger
}

func NewArchive(client *Client, log logging.Logger) *Archive {
	return &Archive{client: client, logger: log}
}

var (
	_ upload.Archiver       = (*Archive)(nil)
	_ upload.ArchiveRemover = (*Archive)(nil)
)

// ObjectName returns the key a filing is archived under.
func ObjectName(token, filename string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		token = untokenizedPrefix
	}
	return token + "/" + path.Base(strings.ReplaceAll(filename, "\\", "/"))
}

func (a *Archive) Put(ctx context.Context, token, filename string, content []byte, hash string) error {
	if a.client.isClosed() {
		return ErrClientClosed
	}
	name := ObjectName(token, filename)
	opts := minio.PutObjectOptions{ContentType: pdfContentType}
	if hash != "" {
		opts.UserMetadata = map[string]string{contentHashMetaKey: hash}
	}
	info, err := a.client.api.PutObject(ctx, a.client.bucket, name, bytes.NewReader(content), int64(len(content)), opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to archive filing").
			WithDetail("object=" + name)
	}
	a.logger.Debug("filing archived",
		logging.String("object", name),
		logging.Int64("size", info.Size))
	return nil
}

// Remove deletes an archived filing. A missing object is not an error.
func (a *Archive) Remove(ctx context.Context, token, filename string) error {
	if a.client.isClosed() {
		return ErrClientClosed
	}
	name := ObjectName(token, filename)
	if err := a.client.api.RemoveObject(ctx, a.client.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to remove filing").
			WithDetail("object=" + name)
	}
	return nil
}
