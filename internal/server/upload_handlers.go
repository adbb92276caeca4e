package server

import (
	"io"

	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadResponse is returned after storing an image.
type UploadResponse struct {
	Message    string `json:"message"`
	ImageURL   string `json:"imageUrl"`
	Filename   string `json:"filename"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// UploadImage stores a JPG or PNG sent as the multipart field "image".
// @Summary Upload an image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "JPG or PNG, max 5MB"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /upload [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}

	res, err := s.uploadService.Save(c.UserContext(), service.UploadInput{
		UserID:      currentUserID(c),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(UploadResponse{
		Message:    "Image uploaded successfully",
		ImageURL:   res.URL,
		Filename:   res.Filename,
		PreviewURL: res.PreviewURL,
	})
}
