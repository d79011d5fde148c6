package controllers

import (
	"net/http"

	"github.com/bancadosucesso/storefront-backend/api/responses"
	"github.com/bancadosucesso/storefront-backend/api/validators"
	notificationsvc "github.com/bancadosucesso/storefront-backend/internal/notifications"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

type notificationListResponse struct {
	Notifications []notificationsvc.NotificationDTO `json:"notifications"`
	UnreadCount   int64                             `json:"unread_count"`
	Pagination    pagination.Page                   `json:"pagination"`
}

type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func AdminListNotifications(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		filter := notificationsvc.ListFilter{
			UnreadOnly: validators.ParseQueryBool(r, "unread_only"),
		}

		params := pagination.FromQuery(r.URL.Query())
		rows, page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unread, err := svc.UnreadCount(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, notificationListResponse{
			Notifications: rows,
			UnreadCount:   unread,
			Pagination:    page,
		})
	}
}

func AdminMarkNotificationRead(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"read": true})
	}
}

func AdminMarkAllNotificationsRead(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		updated, err := svc.MarkAllRead(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, markAllReadResponse{Updated: updated})
	}
}
