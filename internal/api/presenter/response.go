package presenter

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/lakegate/internal/api/middleware"
	"github.com/darmiel/lakegate/internal/rest"
)

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

// Err renders any error as an application/problem+json response, tagging
// it with the request's correlation ID.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	p := rest.ProblemOf(err)
	p.Instance = middleware.CorrelationCtx(r.Context())
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if encodeErr := json.NewEncoder(w).Encode(p); encodeErr != nil {
		log.Ctx(r.Context()).Error().Err(encodeErr).Msg("failed to write problem response")
	}
}
