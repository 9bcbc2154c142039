package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"copilot-context/internal/domain"
	"copilot-context/internal/service"
	"copilot-context/internal/validation"
)

// ContextHandler atiende el hook de contexto que consume el copiloto de soporte.
type ContextHandler struct {
	logger   *zap.Logger
	resolver service.ContextResolver
}

// NewContextHandler crea una instancia de ContextHandler con dependencias necesarias.
func NewContextHandler(logger *zap.Logger, resolver service.ContextResolver) *ContextHandler {
	return &ContextHandler{
		logger:   logger,
		resolver: resolver,
	}
}

// HandleContext maneja el hook. Se monta para todos los métodos; solo POST es válido.
func (h *ContextHandler) HandleContext(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, domain.Failure(domain.ErrMethodNotAllowed))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		verr := validation.UnreadableBody()
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			verr = validation.BodyTooLarge()
		}
		h.rejectInvalid(c, verr)
		return
	}

	req, err := validation.Parse(body)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			h.rejectInvalid(c, verr)
			return
		}
		h.internalError(c, "parse request failed", err)
		return
	}

	resp, err := h.resolve(c, req)
	if err != nil {
		h.internalError(c, "resolve context failed", err, zap.String("ticket_id", req.TicketID))
		return
	}

	c.JSON(http.StatusOK, domain.Success(resp))
}

// resolve aísla panics del resolver para que terminen en el 500 genérico.
func (h *ContextHandler) resolve(c *gin.Context, req domain.ContextRequest) (resp domain.ContextResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("context resolver panic: %v", rec)
		}
	}()
	return h.resolver.Resolve(c.Request.Context(), req)
}

func (h *ContextHandler) rejectInvalid(c *gin.Context, verr *validation.ValidationError) {
	h.logger.Warn("invalid context request",
		zap.String("reason", verr.Error()),
		zap.Int("issues", len(verr.Issues)),
	)
	c.JSON(http.StatusBadRequest, domain.Failure(domain.InvalidRequestPrefix+verr.Error()))
}

func (h *ContextHandler) internalError(c *gin.Context, msg string, err error, fields ...zap.Field) {
	h.logger.Error(msg, append(fields, zap.Error(err))...)
	c.JSON(http.StatusInternalServerError, domain.Failure(domain.ErrInternalServer))
}
