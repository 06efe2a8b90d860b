package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/platform/apierr"
)

type APIError struct {
	Message  string   `json:"message"`
	Code     string   `json:"code,omitempty"`
	Expected string   `json:"expected,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Issues   []string `json:"issues,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	body := APIError{Message: msg, Code: code}

	var sm *pkgerrors.StageMismatchError
	if errors.As(err, &sm) {
		body.Expected = sm.Expected
	}
	var nr *pkgerrors.ReleaseNotReadyError
	if errors.As(err, &nr) {
		body.Reason = nr.Reason
	}
	var vf *pkgerrors.ValidationFailedError
	if errors.As(err, &vf) {
		body.Issues = vf.Issues
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

// RespondErr maps err through apierr. Internal errors are not echoed to the
// client.
func RespondErr(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errors.New(http.StatusText(ae.Status)))
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
