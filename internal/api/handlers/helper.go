package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	appErrors "github.com/ezstore/electronics-store-backend/internal/errors"
	"github.com/ezstore/electronics-store-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

func decodeJSONBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dest any) error {
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(dest)

	if errors.Is(err, io.EOF) {
		logger.Warn("Empty request body", slog.String("endpoint", r.URL.Path))
		response.Error(w, appErrors.BadRequestError("Request body cannot be empty"))

		return err
	}

	if err != nil {
		logger.Warn("Failed to decode request body",
			slog.String("error", err.Error()),
			slog.String("endpoint", r.URL.Path),
		)
		response.Error(w, appErrors.BadRequestError("Invalid JSON body"))

		return err
	}

	return nil
}

func validateStruct(w http.ResponseWriter, logger *slog.Logger, validate *validator.Validate, data any) bool {
	if err := validate.Struct(data); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			logger.Warn("User input validation failed", slog.String("error", validationErrs.Error()))
			response.ValidationError(w, validationErrs)
		} else {
			logger.Error("Unexpected validation error", slog.String("error", err.Error()))
			response.Error(w, appErrors.InternalError("Validation failed"))
		}

		return false
	}

	return true
}
