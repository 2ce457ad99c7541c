package agentservice

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/audio"
	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/facebookgo/grace/gracehttp"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

// DB provides employees and refund requests
type DB interface {
	FindEmployees(ctx context.Context, filters []persistence.Filter) ([]*persistence.Employee, error)
	LoadEmployee(ctx context.Context, id int64) (*persistence.Employee, error)
	TopSalaryEmployee(ctx context.Context) (*persistence.Employee, error)
	InsertEmployee(ctx context.Context, e *persistence.Employee) (*persistence.Employee, error)
	UpdateEmployee(ctx context.Context, id int64, upd *persistence.EmployeeUpdate) (*persistence.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) (bool, error)
	FindRefunds(ctx context.Context, filters []persistence.Filter) ([]*persistence.RefundRequest, error)
	LoadRefund(ctx context.Context, id int64) (*persistence.RefundRequest, error)
	UpdateRefund(ctx context.Context, id int64, upd *persistence.RefundUpdate) (*persistence.RefundRequest, error)
	ListAudioRefs(ctx context.Context) ([]*persistence.AudioRef, error)
	Select(ctx context.Context, table string, q *persistence.Query) ([]map[string]interface{}, error)
	Live(ctx context.Context) error
}

// Storage provides object storage functionality
type Storage interface {
	EnsureBucket(ctx context.Context, name string) bool
	PublicURL(bucket, fileName string) string
	ListFiles(ctx context.Context, bucket string) ([]string, error)
	Upload(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) (string, error)
}

// AudioProcessor transcribes and summarizes audio
type AudioProcessor interface {
	TranscribeAndSummarize(ctx context.Context, url string) *audio.Outcome
	ProcessBatch(ctx context.Context, items []*audio.Item) *audio.BatchResult
}

// Analyzer reads receipt totals
type Analyzer interface {
	Analyze(ctx context.Context, imageURL string) (float64, error)
}

// NameMapper maps receipt file names to refund IDs
type NameMapper interface {
	RefundID(name string) (int64, bool)
}

// MsgSender provides send msg functionality
type MsgSender interface {
	SendMessage(context.Context, amessages.Message, string) error
}

// Data keeps data required for service work
type Data struct {
	Port           int
	DB             DB
	Storage        Storage
	Audio          AudioProcessor
	Analyzer       Analyzer
	NameMapper     NameMapper
	MsgSender      MsgSender
	ReceiptsBucket string
}

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("Starting HTTP refund agent service at %d", data.Port)
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 60 * time.Second
	e.Server.WriteTimeout = 30 * time.Minute

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.DB == nil {
		return errors.New("no DB")
	}
	if data.Storage == nil {
		return errors.New("no storage")
	}
	if data.Audio == nil {
		return errors.New("no audio processor")
	}
	if data.Analyzer == nil {
		return errors.New("no analyzer")
	}
	if data.NameMapper == nil {
		return errors.New("no name mapper")
	}
	if data.MsgSender == nil {
		return errors.New("no msg sender")
	}
	if data.ReceiptsBucket == "" {
		return errors.New("no receipts bucket")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("refundo_agent", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.GET("/live", live(data))

	e.GET("/employees", listEmployees(data))
	e.POST("/employees", insertEmployee(data))
	e.GET("/employees/top-salary", topSalary(data))
	e.GET("/employees/:id", loadEmployee(data))
	e.PATCH("/employees/:id", updateEmployee(data))
	e.DELETE("/employees/:id", deleteEmployee(data))

	e.GET("/refunds", listRefunds(data))
	e.GET("/refunds/export", exportRefunds(data))
	e.GET("/refunds/:id", loadRefund(data))
	e.PATCH("/refunds/:id", updateRefund(data))

	e.PUT("/buckets/:name", ensureBucket(data))
	e.GET("/buckets/:name/url", publicURL(data))

	e.POST("/audio/transcribe", transcribe(data))
	e.POST("/audio/process", processAudio(data))

	e.POST("/receipts", uploadReceipt(data))
	e.POST("/receipts/analyze", analyzeReceipt(data))
	e.POST("/receipts/process", processReceipts(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		if err := data.DB.Live(c.Request().Context()); err != nil {
			goapp.Log.Error().Err(err).Send()
			return c.JSONBlob(http.StatusServiceUnavailable, []byte(`{"service":"OK","db":"FAIL"}`))
		}
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK","db":"OK"}`))
	}
}

func paramID(c echo.Context) (int64, error) {
	res, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || res < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "wrong id")
	}
	return res, nil
}

// dbError maps DB failures to http errors
func dbError(err error) error {
	if errors.Is(err, persistence.ErrWrongQuery) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	goapp.Log.Error().Err(err).Send()
	return echo.NewHTTPError(http.StatusInternalServerError)
}

func notFound(what string, id int64) error {
	return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no %s %d", what, id))
}
