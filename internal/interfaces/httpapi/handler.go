package httpapi

import (
	"context"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/felixbhw/n17-dash/internal/platform/logging"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	linkService *usecase.PlayerLinkService
	newsService *usecase.NewsLinkService
	resolver    *usecase.IdentityResolver
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(
	linkService *usecase.PlayerLinkService,
	newsService *usecase.NewsLinkService,
	resolver *usecase.IdentityResolver,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		linkService: linkService,
		newsService: newsService,
		resolver:    resolver,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return errors.Mark(errors.Wrap(err, "validation failed"), usecase.ErrInvalidInput)
	}

	return nil
}

// decodeJSON reads a strict JSON body. An empty body is an error unless
// allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, out any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return errors.Mark(errors.Wrap(err, "invalid JSON payload"), usecase.ErrInvalidInput)
	}
	return nil
}
