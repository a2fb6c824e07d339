package api

import (
	calerrors "calendar-backend/internal/errors"
	"calendar-backend/internal/storage"
)

// translateStorageError converts a *storage.Error into the UnifiedError
// carrying this module's error codes. storage.Error's message ("storage:
// NotFound calendar ...") does not contain the lowercase substrings
// errors.FromLegacyError keys off of, so every handler routes storage
// errors through here rather than handing them to the ErrorHandler raw.
func translateStorageError(err error) *calerrors.UnifiedError {
	storeErr, ok := err.(*storage.Error)
	if !ok {
		return calerrors.Internal(calerrors.CodeInternalError.String(), err.Error()).Build()
	}
	switch storeErr.Kind {
	case storage.NotFound:
		code := calerrors.CodeEntryNotFound
		if storeErr.Resource == "calendar" {
			code = calerrors.CodeCalendarNotFound
		}
		return calerrors.NotFound(code.String(), storeErr.Error()).Build()
	case storage.AlreadyExists:
		code := calerrors.CodeEntryAlreadyExists
		if storeErr.Resource == "calendar" {
			code = calerrors.CodeCalendarAlreadyExists
		}
		return calerrors.Conflict(code.String(), storeErr.Error()).Build()
	case storage.InvalidData:
		return calerrors.Validation(calerrors.CodeInvalidInput.String(), storeErr.Error()).Build()
	case storage.ConnectionFailed, storage.QueryFailed:
		return calerrors.Connection(calerrors.CodeInternalError.String(), storeErr.Error()).Build()
	default:
		return calerrors.Internal(calerrors.CodeInternalError.String(), storeErr.Error()).Build()
	}
}
