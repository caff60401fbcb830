package media

import (
	"github.com/gin-gonic/gin"

	"github.com/devlink-social/devlink/internal/features/posts"
	"github.com/devlink-social/devlink/internal/pkg/cloudinary"
	"github.com/devlink-social/devlink/internal/pkg/response"
)

type Handler struct {
	cloudinary *cloudinary.Service
	scraper    *posts.Scraper
}

func NewHandler(cld *cloudinary.Service, scraper *posts.Scraper) *Handler {
	return &Handler{
		cloudinary: cld,
		scraper:    scraper,
	}
}

// UploadImage godoc
// @Summary Upload a post image
// @Description Upload an image to Cloudinary and get back its URL for use in a post
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /media/upload [post]
func (h *Handler) UploadImage(c *gin.Context) {
	if h.cloudinary == nil {
		response.ServiceUnavailable(c, "Media uploads are not configured", "UPLOADS_DISABLED")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "File is required", "MISSING_FILE")
		return
	}
	defer file.Close()

	if err := cloudinary.ValidateImageFile(header); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_FILE")
		return
	}

	result, err := h.cloudinary.UploadPostImage(c.Request.Context(), file, header.Filename)
	if err != nil {
		response.InternalServerError(c, "Failed to upload file", "UPLOAD_FAILED")
		return
	}

	response.Success(c, result)
}

// UploadAvatar godoc
// @Summary Upload a profile picture
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /media/avatar [post]
func (h *Handler) UploadAvatar(c *gin.Context) {
	if h.cloudinary == nil {
		response.ServiceUnavailable(c, "Media uploads are not configured", "UPLOADS_DISABLED")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "File is required", "MISSING_FILE")
		return
	}
	defer file.Close()

	if err := cloudinary.ValidateAvatarFile(header); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_FILE")
		return
	}

	result, err := h.cloudinary.UploadAvatar(c.Request.Context(), file, header.Filename)
	if err != nil {
		response.InternalServerError(c, "Failed to upload file", "UPLOAD_FAILED")
		return
	}

	response.Success(c, result)
}

// Preview godoc
// @Summary Preview a link
// @Description Scrape Open Graph metadata for a URL before posting
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param url query string true "URL to preview"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /media/preview [get]
func (h *Handler) Preview(c *gin.Context) {
	targetURL := c.Query("url")
	if targetURL == "" {
		response.BadRequest(c, "URL is required", "MISSING_PARAM")
		return
	}

	preview, err := h.scraper.FetchPreview(c.Request.Context(), targetURL)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch metadata", "SCRAPE_FAILED")
		return
	}

	response.Success(c, preview)
}
