package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gracechapel/backend/biz/service"
	pkgcommon "github.com/gracechapel/backend/pkg/common"
	"github.com/gracechapel/backend/pkg/validator"
)

// Ping is a liveness probe.
func Ping(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{Code: consts.StatusOK, Msg: "pong"})
}

// enrichContext propagates the authenticated user id from headers.
func enrichContext(ctx context.Context, c *app.RequestContext) context.Context {
	if userHeader := c.GetHeader("X-User-Id"); len(userHeader) > 0 {
		if id, err := strconv.Atoi(string(userHeader)); err == nil {
			ctx = pkgcommon.ContextWithUserID(ctx, id)
		}
	}
	return ctx
}

// writeServiceError maps the classified service error taxonomy onto the
// response envelope. Every failure class keeps its machine-readable reason
// so the admin UI can branch on it.
func writeServiceError(c *app.RequestContext, err error) {
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
			Code:  consts.StatusBadRequest,
			Msg:   verr.Message,
			Error: verr.Reason,
		})
		return
	}
	if errors.Is(err, service.ErrAssetNotFound) {
		writeNotFound(c, err)
		return
	}
	var terr *service.TransportError
	if errors.As(err, &terr) {
		c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
			Code:  consts.StatusBadGateway,
			Msg:   terr.Message(),
			Error: string(terr.Code),
		})
		return
	}
	var cerr *service.CatalogError
	if errors.As(err, &cerr) {
		c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
			Code:  consts.StatusInternalServerError,
			Msg:   "catalog operation failed",
			Error: cerr.Code,
		})
		return
	}
	writeInternalError(c, err)
}

func writeBadRequest(c *app.RequestContext, err error) {
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code:  consts.StatusBadRequest,
		Msg:   err.Error(),
		Error: err.Error(),
	})
}

func writeInternalError(c *app.RequestContext, err error) {
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code:  consts.StatusInternalServerError,
		Msg:   "internal error",
		Error: err.Error(),
	})
}

func writeNotFound(c *app.RequestContext, err error) {
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code:  consts.StatusNotFound,
		Msg:   err.Error(),
		Error: err.Error(),
	})
}
