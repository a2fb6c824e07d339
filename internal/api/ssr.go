package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	calerrors "calendar-backend/internal/errors"
	"calendar-backend/internal/ssr"
)

// Prerender serves GET /ssr?path=... by handing the requested path to the
// SSR worker pool and returning the rendered HTML fragment. ssr.Error's
// Kind is translated to the matching ErrorCode in codes.go so the
// response status and retryability come from one place.
func (h *Handlers) Prerender(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.errorHand.HandleHTTPError(w, r, calerrors.Validation(calerrors.CodeMissingField.String(), "path query parameter is required").Build())
		return
	}

	start := time.Now()
	html, err := h.Renderer.Render(r.Context(), map[string]any{"path": path})
	elapsed := time.Since(start)
	if err != nil {
		unifiedErr := translateSSRError(err)
		if h.Metrics != nil {
			h.Metrics.ObserveSSRRender(ssrOutcome(unifiedErr), elapsed)
		}
		h.logger.Warn("ssr: render failed", zap.String("path", path), zap.Error(err))
		h.errorHand.HandleHTTPError(w, r, unifiedErr)
		return
	}

	if h.Metrics != nil {
		h.Metrics.ObserveSSRRender("ok", elapsed)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// translateSSRError converts an *ssr.Error into the UnifiedError carrying
// this module's error codes and HTTP status mapping; any other error is
// wrapped as an internal error.
func translateSSRError(err error) *calerrors.UnifiedError {
	ssrErr, ok := err.(*ssr.Error)
	if !ok {
		return calerrors.Internal(calerrors.CodeInternalError.String(), err.Error()).Build()
	}
	switch ssrErr.Kind {
	case ssr.KindOverloaded:
		return calerrors.NewError(calerrors.ErrorTypeUnavailable, calerrors.CodeSSROverloaded.String(), ssrErr.Error()).
			WithRetryable(true).
			WithRetryAfter(ssrErr.RetryAfter).
			Build()
	case ssr.KindTimeout:
		return calerrors.Timeout(calerrors.CodeSSRTimeout.String(), ssrErr.Error()).Build()
	case ssr.KindPayloadTooLarge:
		return calerrors.Validation(calerrors.CodePayloadTooLarge.String(), ssrErr.Error()).Build()
	case ssr.KindBundleError:
		return calerrors.Internal(calerrors.CodeBundleError.String(), ssrErr.Error()).Build()
	case ssr.KindEngineError:
		return calerrors.Internal(calerrors.CodeEngineError.String(), ssrErr.Error()).Build()
	default:
		return calerrors.Internal(calerrors.CodeInternalError.String(), ssrErr.Error()).Build()
	}
}

func ssrOutcome(err *calerrors.UnifiedError) string {
	switch err.Code {
	case calerrors.CodeSSROverloaded.String():
		return "overloaded"
	case calerrors.CodeSSRTimeout.String():
		return "timeout"
	case calerrors.CodePayloadTooLarge.String():
		return "payload_too_large"
	default:
		return "error"
	}
}
