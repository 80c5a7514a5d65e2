package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"bi-service/internal/config"
	"bi-service/internal/http/middleware"
)

const maxRelayBody = 1 << 20

var relayHeaders = []string{
	"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version", "Content-Length",
	"Content-MD5", "Content-Type", "Date", "X-Api-Version",
}

// RelayHandler forwards chat-completion requests to the upstream provider so
// the API key never leaves the server.
type RelayHandler struct {
	path     string
	upstream string
	apiKey   string
	client   *http.Client
	cors     gin.HandlerFunc
	limit    gin.HandlerFunc
	log      zerolog.Logger
}

// NewRelayHandler builds the relay. ctx bounds the rate limiter's background
// sweep.
func NewRelayHandler(ctx context.Context, cfg config.RelayConfig, log zerolog.Logger) *RelayHandler {
	return &RelayHandler{
		path:     cfg.Path,
		upstream: cfg.UpstreamURL,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		cors:     cors.New(relayCORS(cfg.AllowedOrigins)),
		limit:    middleware.RateLimit(ctx, middleware.PerMinute(cfg.RatePerMinute), cfg.Burst),
		log:      log.With().Str("component", "relay").Logger(),
	}
}

func relayCORS(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:              []string{"GET", "OPTIONS", "PATCH", "DELETE", "POST", "PUT"},
		AllowHeaders:              relayHeaders,
		AllowCredentials:          true,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if len(origins) == 0 {
		// Credentials forbid a literal "*", so every origin is echoed back.
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (h *RelayHandler) Register(r *gin.Engine) {
	r.Any(h.path, h.cors, h.limit, h.relay)
}

func (h *RelayHandler) relay(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
		return
	case http.MethodPost:
	default:
		c.JSON(http.StatusMethodNotAllowed, errorResponse("method not allowed"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRelayBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, h.upstream, bytes.NewReader(body))
	if err != nil {
		h.internalError(c, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		h.internalError(c, err)
		return
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		h.internalError(c, err)
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.log.Warn().Int("status", resp.StatusCode).Msg("upstream rejected completion")
		var detail interface{} = string(payload)
		if json.Valid(payload) {
			detail = json.RawMessage(payload)
		}
		c.JSON(resp.StatusCode, gin.H{"error": detail})
		return
	}

	if !json.Valid(payload) {
		h.internalError(c, errors.New("upstream returned a non-JSON body"))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *RelayHandler) internalError(c *gin.Context, err error) {
	h.log.Error().Err(err).Msg("relay request failed")
	c.JSON(http.StatusInternalServerError, errorResponse("internal server error"))
}
