package handlers

import (
	"net/http"

	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// DalleHandler relays image generation and dream interpretation prompts
type DalleHandler struct {
	media *services.MediaService
}

func NewDalleHandler(media *services.MediaService) *DalleHandler {
	return &DalleHandler{media: media}
}

func (h *DalleHandler) RegisterDalleRoutes(g *echo.Group) {
	g.POST("", h.GenerateImage)
	g.POST("/interpret-dream", h.InterpretDream)
}

type promptRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// GenerateImage returns {photo: <base64 image>}
func (h *DalleHandler) GenerateImage(c echo.Context) error {
	var req promptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	photo, err := h.media.GenerateImage(c.Request().Context(), req.Prompt)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"photo": photo})
}

// InterpretDream returns {bot: <interpretation>}
func (h *DalleHandler) InterpretDream(c echo.Context) error {
	var req promptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	text, err := h.media.InterpretDream(c.Request().Context(), req.Prompt)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bot": text})
}
