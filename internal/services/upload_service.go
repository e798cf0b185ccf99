package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"bookstore/internal/infra"
	"bookstore/internal/models/request_models"
	resp "bookstore/internal/models/response_models"
	"bookstore/pkg/utils"
)

const (
	uploadRoot    = "uploads"
	defaultFolder = "covers"
)

type UploadService interface {
	PresignUpload(ctx context.Context, req request_models.PresignUploadRequest) (*resp.PresignUploadResponse, error)
	Upload(ctx context.Context, folder, fileName, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

type uploadService struct {
	storage infra.ObjectStorage
}

func NewUploadService(storage infra.ObjectStorage) UploadService {
	return &uploadService{storage: storage}
}

// objectKey builds uploads/<folder>/<uuid><ext>; the client file name only
// contributes its extension.
func objectKey(folder, fileName string) string {
	if folder == "" {
		folder = defaultFolder
	}
	ext := strings.ToLower(path.Ext(path.Base(fileName)))
	return path.Join(uploadRoot, folder, uuid.NewString()+ext)
}

func (s *uploadService) PresignUpload(ctx context.Context, req request_models.PresignUploadRequest) (*resp.PresignUploadResponse, error) {
	key := objectKey(req.Folder, req.FileName)
	url, err := s.storage.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}
	return &resp.PresignUploadResponse{Key: key, UploadURL: url}, nil
}

func (s *uploadService) Upload(ctx context.Context, folder, fileName, contentType string, body io.Reader) (string, error) {
	key, err := s.storage.Upload(ctx, body, objectKey(folder, fileName), contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}
	return key, nil
}

func (s *uploadService) Delete(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, uploadRoot+"/") || strings.Contains(key, "..") {
		return utils.ErrInvalidKey
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}
	return nil
}
