package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore/internal/models/request_models"
	"bookstore/internal/services"
	"bookstore/pkg/utils"
)

const maxUploadSize = 50 << 20

var uploadFolders = map[string]bool{"": true, "covers": true, "samples": true, "certificates": true}

type UploadController struct {
	uploadService services.UploadService
}

func NewUploadController(uploadService services.UploadService) *UploadController {
	return &UploadController{uploadService: uploadService}
}

// PresignUpload godoc
// @Summary Get a presigned PUT url for a catalogue asset
// @Tags Uploads
// @Accept json
// @Produce json
// @Param request body request_models.PresignUploadRequest true "File"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /uploads/presign [post]
func (u *UploadController) PresignUpload(c *gin.Context) {
	var request request_models.PresignUploadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	out, err := u.uploadService.PresignUpload(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, out, "Upload url created successfully")
}

// Upload accepts a multipart "file" and an optional "folder" field.
func (u *UploadController) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	folder := c.PostForm("folder")
	if !uploadFolders[folder] {
		utils.RespondError(c, http.StatusBadRequest, "folder must be one of: covers, samples, certificates")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unable to read file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := u.uploadService.Upload(c.Request.Context(), folder, header.Filename, contentType, file)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondWithCode(c, http.StatusCreated, gin.H{"url": url}, "File uploaded successfully")
}

func (u *UploadController) Delete(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		utils.RespondError(c, http.StatusBadRequest, "key is required")
		return
	}

	if err := u.uploadService.Delete(c.Request.Context(), key); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "File deleted successfully")
}
