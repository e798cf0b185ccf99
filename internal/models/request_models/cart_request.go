package request_models

import "github.com/google/uuid"

type UpdateCartRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required"`
}

type PresignUploadRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder" binding:"omitempty,oneof=covers samples certificates"`
}
