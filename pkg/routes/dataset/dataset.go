package dataset

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	clientrepo "github.com/JamesPrial/pii-leak-test/internal/repositories/client"
	staffrepo "github.com/JamesPrial/pii-leak-test/internal/repositories/staff"
	"github.com/JamesPrial/pii-leak-test/pkg/database"
	"github.com/JamesPrial/pii-leak-test/pkg/events"
	"github.com/JamesPrial/pii-leak-test/pkg/generate"
	"github.com/JamesPrial/pii-leak-test/pkg/metrics"
	"github.com/JamesPrial/pii-leak-test/pkg/models"
	"github.com/JamesPrial/pii-leak-test/pkg/random"
	"github.com/JamesPrial/pii-leak-test/pkg/refdata"
	"github.com/JamesPrial/pii-leak-test/pkg/tracing"
)

var validate = validator.New()

// Register registers dataset routes
func Register(g *echo.Group) {
	g.POST("", Generate)
}

// Generate generates a dataset, optionally persisting it to the store.
// Generation is all-or-nothing: any failure returns an error with no partial
// records kept anywhere.
func Generate(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.Generate")
	defer span.End()

	var req models.GenerateDatasetRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, generator, err := ectoinject.GetContext[*generate.Generator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get generator")
	}

	kind := generate.Kind(req.Kind)
	if kind == "" {
		kind = generate.KindBoth
	}

	start := time.Now()
	ds, err := generator.Generate(generate.Options{
		Kind:        kind,
		StaffCount:  req.StaffCount,
		ClientCount: req.ClientCount,
		BiasState:   req.StateBias,
		BiasPct:     req.StateBiasPct,
		Seed:        req.Seed,
	})
	if err != nil {
		metrics.GenerationFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return generationError(err)
	}

	metrics.GenerationDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	metrics.RecordsGeneratedTotal.WithLabelValues("staff").Add(float64(len(ds.Staff)))
	metrics.RecordsGeneratedTotal.WithLabelValues("clients").Add(float64(len(ds.Clients)))

	datasetID := uuid.New().String()

	if req.Persist {
		if err := persist(c, ds, req.Replace); err != nil {
			return err
		}
	}

	// Events are best-effort: a dead broker never fails the request.
	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil && emitter != nil {
		_ = emitter.EmitDatasetGenerated(ctx, datasetID, kind, ds)
		if req.Persist {
			_ = emitter.EmitDatasetPersisted(ctx, datasetID, len(ds.Staff), len(ds.Clients))
		}
	}

	return c.JSON(http.StatusCreated, models.DatasetResponse{
		DatasetID:   datasetID,
		Kind:        string(kind),
		Seed:        ds.Seed,
		GeneratedAt: ds.GeneratedAt,
		StaffCount:  len(ds.Staff),
		ClientCount: len(ds.Clients),
		Persisted:   req.Persist,
		Staff:       ds.Staff,
		Clients:     ds.Clients,
	})
}

func persist(c echo.Context, ds *generate.Dataset, replace bool) error {
	ctx := c.Request().Context()

	ctx, db, err := ectoinject.GetContext[database.DB](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get database")
	}
	ctx, staffRepo, err := ectoinject.GetContext[*staffrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get staff repository")
	}
	ctx, clientRepo, err := ectoinject.GetContext[*clientrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get client repository")
	}

	// One transaction spans both tables. The repositories join it through
	// the context, so a failure part way through leaves the store as it was.
	txCtx, tx, err := db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin persist transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if replace {
		if err := staffRepo.DeleteAll(txCtx); err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to clear staff records")
		}
		if err := clientRepo.DeleteAll(txCtx); err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to clear client records")
		}
	}

	if err := staffRepo.BulkCreate(txCtx, ds.Staff); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to persist staff records")
	}
	if err := clientRepo.BulkCreate(txCtx, ds.Clients); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to persist client records")
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit persisted records")
	}

	return nil
}

// generationError maps generator failures onto HTTP status codes. Bad inputs
// are the caller's fault; reference data faults are ours.
func generationError(err error) error {
	switch {
	case isBadInput(err):
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func isBadInput(err error) bool {
	if httperror.IsHTTPError(err) {
		return false
	}
	for _, target := range []error{
		generate.ErrInvalidCount,
		generate.ErrInvalidKind,
		random.ErrInvalidProbability,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var cfgErr *refdata.ConfigurationError
	return errors.As(err, &cfgErr)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, generate.ErrInvalidCount):
		return "invalid_count"
	case errors.Is(err, generate.ErrInvalidKind):
		return "invalid_kind"
	case errors.Is(err, random.ErrInvalidProbability):
		return "invalid_probability"
	case errors.Is(err, generate.ErrNamePoolExhausted):
		return "name_pool_exhausted"
	default:
		return "internal"
	}
}
