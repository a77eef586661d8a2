package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/AMV0027/gcn-final/internal/pkg/errcode"
	"github.com/AMV0027/gcn-final/internal/pkg/response"
	"github.com/AMV0027/gcn-final/internal/service"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	var perr *service.ProcessingError
	if errors.As(err, &perr) {
		response.Error(c, errcode.ErrProcessingFailed, perr.Error())
		return
	}
	code, msg := response.CodeOf(err)
	response.Error(c, code, msg)
}
