package agentservice

import (
	"net/http"
	"path"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/audio"
	"github.com/airenas/refundo/internal/pkg/messages"
	"github.com/airenas/refundo/internal/pkg/utils"
	"github.com/labstack/echo/v4"
)

type bucketResult struct {
	Bucket string `json:"bucket"`
	Exists bool   `json:"exists"`
}

func ensureBucket(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		name := c.Param("name")
		ok := data.Storage.EnsureBucket(c.Request().Context(), name)
		res := bucketResult{Bucket: name, Exists: ok}
		if !ok {
			return c.JSON(http.StatusServiceUnavailable, res)
		}
		return c.JSON(http.StatusOK, res)
	}
}

type urlResult struct {
	URL string `json:"url"`
}

func publicURL(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		file := c.QueryParam("file")
		if file == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "no file")
		}
		return c.JSON(http.StatusOK, urlResult{URL: data.Storage.PublicURL(c.Param("name"), file)})
	}
}

type audioInput struct {
	URL string `json:"audio_url"`
}

type outcomeResult struct {
	Success       bool   `json:"success"`
	Transcription string `json:"transcription,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Error         string `json:"error,omitempty"`
}

func transcribe(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("transcribe")()
		var in audioInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		if strings.TrimSpace(in.URL) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "no audio_url")
		}
		o := data.Audio.TranscribeAndSummarize(c.Request().Context(), in.URL)
		return c.JSON(http.StatusOK, outcomeResult{Success: o.Success, Transcription: o.Transcription,
			Summary: o.Summary, Error: o.Error})
	}
}

type batchInput struct {
	Items []*audio.Item `json:"items"`
}

// processAudio runs the batch for the given items,
// or for all refund rows with an audio URL when no items are sent
func processAudio(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("process audio")()
		ctx := c.Request().Context()
		var in batchInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		if in.Items == nil {
			refs, err := data.DB.ListAudioRefs(ctx)
			if err != nil {
				return dbError(err)
			}
			in.Items = make([]*audio.Item, 0, len(refs))
			for _, r := range refs {
				in.Items = append(in.Items, &audio.Item{ID: r.ID, URL: r.AudioURL})
			}
		}
		return c.JSON(http.StatusOK, data.Audio.ProcessBatch(ctx, in.Items))
	}
}

type receiptInput struct {
	ImageURL string `json:"image_url"`
	File     string `json:"file"`
}

type amountResult struct {
	ImageURL string  `json:"image_url"`
	Amount   float64 `json:"amount"`
}

func analyzeReceipt(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("analyze receipt")()
		var in receiptInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		url := in.ImageURL
		if url == "" && in.File != "" {
			url = data.Storage.PublicURL(data.ReceiptsBucket, in.File)
		}
		if url == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "no image_url or file")
		}
		amount, err := data.Analyzer.Analyze(c.Request().Context(), url)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusBadGateway, "can't read receipt total")
		}
		return c.JSON(http.StatusOK, amountResult{ImageURL: url, Amount: amount})
	}
}

func uploadReceipt(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("upload receipt")()
		fh, err := c.FormFile("file")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "no file")
		}
		name := path.Base(fh.Filename)
		if !utils.SupportImageExt(name) {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong file type, expected png or jpg")
		}
		f, err := fh.Open()
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		defer f.Close()
		ctx := c.Request().Context()
		if !data.Storage.EnsureBucket(ctx, data.ReceiptsBucket) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "no receipts bucket")
		}
		url, err := data.Storage.Upload(ctx, data.ReceiptsBucket, name, f, fh.Size, fh.Header.Get(echo.HeaderContentType))
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, urlResult{URL: url})
	}
}

type queuedReceipt struct {
	File     string `json:"file"`
	RefundID int64  `json:"refund_id"`
}

type processResult struct {
	Queued  []queuedReceipt `json:"queued"`
	Skipped []string        `json:"skipped"`
}

// processReceipts queues a job for every receipt image that maps to an existing refund row
func processReceipts(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("process receipts")()
		ctx := c.Request().Context()
		files, err := data.Storage.ListFiles(ctx, data.ReceiptsBucket)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusServiceUnavailable, "can't list receipts")
		}
		res := processResult{Queued: []queuedReceipt{}, Skipped: []string{}}
		for _, f := range files {
			id, ok := data.NameMapper.RefundID(f)
			if !ok {
				goapp.Log.Info().Str("file", f).Msg("skip, no refund mapping")
				res.Skipped = append(res.Skipped, f)
				continue
			}
			r, err := data.DB.LoadRefund(ctx, id)
			if err != nil {
				goapp.Log.Error().Err(err).Send()
				return echo.NewHTTPError(http.StatusInternalServerError)
			}
			if r == nil {
				goapp.Log.Info().Str("file", f).Int64("id", id).Msg("skip, no refund row")
				res.Skipped = append(res.Skipped, f)
				continue
			}
			if err := data.MsgSender.SendMessage(ctx, messages.NewReceiptMessage(data.ReceiptsBucket, f, id),
				messages.Receipt); err != nil {
				goapp.Log.Error().Err(err).Send()
				return echo.NewHTTPError(http.StatusInternalServerError)
			}
			res.Queued = append(res.Queued, queuedReceipt{File: f, RefundID: id})
		}
		goapp.Log.Info().Int("queued", len(res.Queued)).Int("skipped", len(res.Skipped)).Msg("receipts")
		return c.JSON(http.StatusOK, res)
	}
}
