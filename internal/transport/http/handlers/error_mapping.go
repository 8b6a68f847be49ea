package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	appLogger "github.com/chinobetoska/nenemi-a-html/internal/infra/logger"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/telemetry"
	"github.com/chinobetoska/nenemi-a-html/internal/usecase"
)

// OutcomeCase maps a failed pipeline outcome to the flash message and redirect marker
// the visitor sees.
type OutcomeCase struct {
	Kind    usecase.OutcomeKind
	Marker  string
	Message string
	// KeepForm stashes the submitted values so the page can re-populate its inputs.
	KeepForm bool
}

var registrationCases = []OutcomeCase{
	{Kind: usecase.OutcomeValidationFailed, Marker: MarkerValidation, KeepForm: true},
	{Kind: usecase.OutcomeConflict, Marker: MarkerDuplicate, Message: usecase.MsgEmailTaken, KeepForm: true},
	{Kind: usecase.OutcomeRateLimited, Marker: MarkerRateLimited, Message: usecase.MsgRateLimited},
	{Kind: usecase.OutcomeSystemFailure, Marker: MarkerSystem, Message: usecase.MsgRegistrationSystem},
}

var loginCases = []OutcomeCase{
	{Kind: usecase.OutcomeValidationFailed, Marker: MarkerValidation},
	{Kind: usecase.OutcomeAuthFailed, Marker: MarkerCredentials, Message: usecase.MsgInvalidCredentials},
	{Kind: usecase.OutcomeInactive, Marker: MarkerInactive, Message: usecase.MsgInactiveAccount},
	{Kind: usecase.OutcomeRateLimited, Marker: MarkerRateLimited, Message: usecase.MsgRateLimited},
	{Kind: usecase.OutcomeSystemFailure, Marker: MarkerSystem, Message: usecase.MsgLoginSystem},
}

// RedirectWithOutcome records the failure on the session and sends the visitor back to page.
// Kinds missing from cases fall back to the generic message.
func RedirectWithOutcome(c *gin.Context, sess *domain.WebSession, out usecase.Outcome, cases []OutcomeCase, page string, form map[string]string) {
	for _, cs := range cases {
		if cs.Kind != out.Kind {
			continue
		}
		if out.Kind == usecase.OutcomeValidationFailed {
			sess.SetErrors(out.Errors)
		} else {
			sess.SetError(cs.Message)
		}
		if cs.KeepForm && form != nil {
			sess.SetForm(form)
		}
		c.Redirect(http.StatusFound, withQuery(page, "error", cs.Marker))
		return
	}

	sess.SetError(usecase.MsgUnexpected)
	c.Redirect(http.StatusFound, withQuery(page, "error", MarkerGeneral))
}

// rejectNonPost handles direct visits to a processing endpoint. observe counts the
// rejection against the flow's pipeline counter.
func rejectNonPost(c *gin.Context, sess *domain.WebSession, page string, observe func(outcome string)) {
	appLogger.WithContext(c.Request.Context()).Warn("processing endpoint reached without a form submission",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(usecase.ErrUnauthorizedAccess),
	)
	if observe != nil {
		observe(telemetry.OutcomeUnauthorized)
	}
	sess.SetError(usecase.MsgUnauthorizedAccess)
	c.Redirect(http.StatusFound, page)
}

// recoverToGeneral turns a panic inside a processing endpoint into the generic failure
// redirect. It must be deferred.
func recoverToGeneral(c *gin.Context, sess *domain.WebSession, page string) {
	rec := recover()
	if rec == nil {
		return
	}
	appLogger.WithContext(c.Request.Context()).Error("unexpected failure while processing form",
		zap.String("path", c.FullPath()),
		zap.Error(fmt.Errorf("panic: %v", rec)),
	)
	if c.Writer.Written() {
		return
	}
	sess.SetError(usecase.MsgUnexpected)
	c.Redirect(http.StatusFound, withQuery(page, "error", MarkerGeneral))
	c.Abort()
}
