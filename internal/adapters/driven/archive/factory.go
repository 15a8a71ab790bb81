// Package archive builds the configured upload archive.
package archive

import (
	"fmt"

	"github.com/custodia-labs/pdfrag/internal/adapters/driven/archive/filesystem"
	"github.com/custodia-labs/pdfrag/internal/adapters/driven/archive/minio"
	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

// New returns the archive selected by settings, or nil when archiving is off.
func New(settings domain.ArchiveSettings) (driven.DocumentArchive, error) {
	switch settings.Provider {
	case domain.ArchiveNone, "":
		return nil, nil
	case domain.ArchiveFilesystem:
		a, err := filesystem.New(settings.Dir)
		if err != nil {
			return nil, err
		}
		return a, nil
	case domain.ArchiveMinio:
		a, err := minio.New(minio.Config{
			Endpoint:  settings.Endpoint,
			AccessKey: settings.AccessKey,
			SecretKey: settings.SecretKey,
			Bucket:    settings.Bucket,
			Region:    settings.Region,
			UseSSL:    settings.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: archive %q", domain.ErrUnsupportedType, settings.Provider)
	}
}
