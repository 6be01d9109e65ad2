package handler

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gracechapel/backend/biz/service"
)

// ContactHandler relays contact form submissions. Unlike the admin media
// APIs it is a public endpoint consumed by the site frontend, so it speaks
// plain HTTP status codes with a {success, message} body.
type ContactHandler struct {
	service *service.ContactService
}

func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Submit accepts a contact form submission and forwards it by email.
func (h *ContactHandler) Submit(ctx context.Context, c *app.RequestContext) {
	var req service.ContactRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(consts.StatusBadRequest, contactResponse{Message: "Invalid request body."})
		return
	}

	if err := h.service.Relay(ctx, req); err != nil {
		var verr *service.ContactValidationError
		if errors.As(err, &verr) {
			c.JSON(consts.StatusBadRequest, contactResponse{Message: verr.Message})
			return
		}
		hlog.CtxErrorf(ctx, "contact relay failed: %v", err)
		c.JSON(consts.StatusInternalServerError, contactResponse{Message: "Failed to send message. Please try again later."})
		return
	}
	c.JSON(consts.StatusOK, contactResponse{Success: true, Message: "Message sent successfully."})
}

// MethodNotAllowed answers non-POST requests on the contact endpoint.
func (h *ContactHandler) MethodNotAllowed(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusMethodNotAllowed, contactResponse{Message: "Method not allowed."})
}
