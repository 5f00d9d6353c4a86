package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/prasetyo/tokobarang-backend/internal/errors"
	"github.com/prasetyo/tokobarang-backend/internal/middleware"
	"github.com/prasetyo/tokobarang-backend/internal/storage"
)

// MaxUploadSize caps declared upload sizes at 4 MB
const MaxUploadSize = 4 << 20

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size"`
	Folder      string `json:"folder"` // Optional: defaults to "products"
}

// GeneratePresignedURL creates a presigned S3 URL for an image upload
// POST /api/v1/upload/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	allowedTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
	}
	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedTypes); err != nil {
		log.Warn("Invalid content type for upload", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Hanya file gambar yang diizinkan (JPEG, PNG, GIF, WEBP)")
		return
	}

	if req.Size > 0 {
		if err := ctrl.storage.ValidateFileSize(req.Size, MaxUploadSize); err != nil {
			log.Warn("Upload too large", map[string]interface{}{
				"size": req.Size,
			})
			apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Ukuran file maksimal 4 MB")
			return
		}
	}

	folder := req.Folder
	if folder == "" {
		folder = "products"
	}

	response, err := ctrl.storage.GeneratePresignedURL(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"folder":       folder,
		})
		apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"filename": req.Filename,
		"folder":   folder,
		"key":      response.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"upload_url": response.UploadURL,
		"file_url":   response.FileURL,
		"key":        response.Key,
	})
}
