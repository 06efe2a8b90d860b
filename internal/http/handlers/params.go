package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/config-center/internal/platform/apierr"
)

var (
	errInvalidVersionNo = apierr.New(http.StatusBadRequest, "invalid_version_no", errors.New("invalid version number"))
	errInvalidBody      = apierr.New(http.StatusBadRequest, "invalid_request", errors.New("request body must be a JSON object"))
)

func versionNoParam(c *gin.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("versionNo"))
	if err != nil || n < 1 {
		return 0, errInvalidVersionNo
	}
	return n, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_request", err)
	}
	return nil
}
