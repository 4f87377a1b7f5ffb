package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"bookit/internal/domains/url/model"
	service "bookit/internal/domains/url/service"
	"bookit/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ProcessURL - POST /url
// Body {url, operation}; unknown fields are rejected.
func (h *Handler) ProcessURL(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		model.HandleURLError(c, model.ErrEmptyBody)
		return
	}

	var req model.CleanRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		model.HandleURLError(c, model.ErrBadBody)
		return
	}

	out, err := h.service.Process(c.Request.Context(), req)
	if model.HandleURLError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, model.CleanResponse{ProcessedURL: out})
}
