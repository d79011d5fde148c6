package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/api/validators"
)

func parseIDParam(r *http.Request) (uuid.UUID, error) {
	return validators.ParseUUIDParam(r, "id")
}
