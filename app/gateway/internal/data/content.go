package data

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	dm "github.com/iWorld-y/overcomer/app/content/pkg/model"
	"github.com/iWorld-y/overcomer/app/content/pkg/storage"
	"github.com/iWorld-y/overcomer/app/gateway/internal/usecase"
)

type archiveRepo struct {
	data *Data
	log  *log.Helper
}

func NewArchiveRepo(data *Data, logger log.Logger) usecase.ArchiveRepo {
	return &archiveRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *archiveRepo) Latest(ctx context.Context, category dm.Category) (*dm.Payload, error) {
	if r.data.archive == nil {
		return nil, errors.NotFound("ARCHIVE_DISABLED", "payload archive is not configured")
	}
	p, err := r.data.archive.Latest(ctx, category)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NotFound("PAYLOAD_NOT_FOUND", "no archived payload for "+category.String())
		}
		r.log.Errorf("query latest payload: %v", err)
		return nil, err
	}
	return p, nil
}

func (r *archiveRepo) List(ctx context.Context, category dm.Category, limit int) ([]storage.Record, error) {
	if r.data.archive == nil {
		return nil, errors.NotFound("ARCHIVE_DISABLED", "payload archive is not configured")
	}
	return r.data.archive.List(ctx, category, limit)
}
