package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"adminportal/internal/domain/forms"
	"adminportal/internal/platform/webhook"
	"adminportal/internal/transport/http/api"
)

type userMessager interface {
	UserMessage() string
}

// WriteError maps a controller error onto the portal error envelope. data,
// when set, is the view the client should render alongside the banner.
func WriteError(w http.ResponseWriter, requestID string, err error, data any) {
	message := ""
	var um userMessager
	if errors.As(err, &um) {
		message = um.UserMessage()
	}

	if verr, ok := forms.AsValidation(err); ok {
		if message != "" {
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", message, map[string]any{"fields": verr.Issues}, data, requestID)
			return
		}
		FailValidation(w, requestID, verr, data)
		return
	}
	if rejected, ok := webhook.AsRejected(err); ok {
		if message == "" {
			message = rejected.Message
		}
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "remote_rejected", message, nil, data, requestID)
		return
	}
	if webhook.IsTransport(err) {
		if message == "" {
			message = "伺服器連線失敗"
		}
		api.FailWithDetails(w, http.StatusBadGateway, "remote_unavailable", message, nil, data, requestID)
		return
	}

	slog.Error("unhandled request error", "requestId", requestID, "err", err)
	if message == "" {
		message = "系統錯誤"
	}
	api.FailWithDetails(w, http.StatusInternalServerError, "internal_error", message, nil, data, requestID)
}

// Busy answers an overlapping submit or query.
func Busy(w http.ResponseWriter, requestID string, data any) {
	api.FailWithDetails(w, http.StatusConflict, "busy", "處理中，請稍候", nil, data, requestID)
}
