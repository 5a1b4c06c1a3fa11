package storage

import (
	"strings"

	"github.com/ahnafi/gym-management-app-sub000/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type UploadRequest struct {
	Folder      string `json:"folder" binding:"required,oneof=membership-packages classes trainer-packages"`
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp"`
}

type UploadResponse struct {
	ObjectKey string `json:"object_key" example:"classes/3f1c2a9e-1b7d-4a53-9a55-0f5b8c2d1e4f.jpg"`
	UploadURL string `json:"upload_url"`
	ExpiresIn int    `json:"expires_in" example:"900"`
}

type Handler struct {
	storage FileStorage
	newID   func() string
}

func NewHandler(s FileStorage) *Handler {
	return &Handler{storage: s, newID: uuid.NewString}
}

// CreateUpload godoc
// @Summary      Presign a catalog image upload
// @Description  Returns a short-lived PUT URL. Store the returned object_key as the catalog item's image_key.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      storage.UploadRequest  true  "Upload target"
// @Success      201      {object}  api.Envelope{data=storage.UploadResponse}
// @Failure      400      {object}  api.Envelope
// @Failure      503      {object}  api.Envelope
// @Router       /admin/uploads [post]
func (h *Handler) CreateUpload(c *gin.Context) {
	var req UploadRequest
	if !api.BindJSON(c, &req) {
		return
	}

	key := strings.Join([]string{req.Folder, h.newID() + extensions[req.ContentType]}, "/")
	url, err := h.storage.GeneratePresignedUploadURL(c.Request.Context(), key, req.ContentType, DefaultPresignedURLExpiry)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.Created(c, "Upload URL created", UploadResponse{
		ObjectKey: key,
		UploadURL: url,
		ExpiresIn: int(DefaultPresignedURLExpiry.Seconds()),
	})
}
