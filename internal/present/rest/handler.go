package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/attestia/notary"
	"github.com/attestia/notary/internal/domain"
	"github.com/attestia/notary/internal/present/rest/presenter"
	"github.com/attestia/notary/internal/usecase"
)

// Signal is the slice of the signal service the handler needs.
type Signal interface {
	Publish(ctx context.Context, event notary.Event) error
	Realtime(ctx context.Context, input chan []string, output chan notary.Event)
}

type Handler struct {
	config   domain.Config
	document *usecase.DocumentUsecase
	notarize *usecase.NotarizeUsecase
	signal   Signal
}

func NewHandler(
	config domain.Config,
	document *usecase.DocumentUsecase,
	notarize *usecase.NotarizeUsecase,
	signal Signal,
) *Handler {
	return &Handler{
		config:   config,
		document: document,
		notarize: notarize,
		signal:   signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/sign", h.handleSign)
	e.POST("/api/v1/verify", h.handleVerify)
	e.POST("/api/v1/notarize", h.handleNotarize)
	e.GET("/api/v1/documents/:hash", h.handleDocumentStatus)
	e.GET("/api/v1/gas-estimate", h.handleGasEstimate)
	e.GET("/api/v1/contract-info", h.handleContractInfo)
	e.GET("/api/v1/document-types", h.handleDocumentTypes)
	e.GET("/realtime", h.handleRealtime)
}

func readFormFile(c echo.Context) ([]byte, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("no file uploaded")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}

	return content, filepath.Base(fh.Filename), nil
}

func (h *Handler) handleSign(c echo.Context) error {
	ctx := c.Request().Context()

	content, filename, err := readFormFile(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	owner := c.FormValue("owner")
	if owner == "" {
		return presenter.BadRequestMessage(c, "owner parameter is required")
	}
	docType := notary.DocumentType(c.FormValue("type"))
	issuer := c.FormValue("issuer")

	signed, err := h.document.Sign(ctx, content, filename, owner, docType, issuer)
	if err != nil {
		return presenter.Error(c, err)
	}

	ext := filepath.Ext(filename)
	signedName := strings.TrimSuffix(filename, ext) + "_signed" + ext
	c.Response().Header().Set(
		echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": signedName}),
	)
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, signed)
}

func (h *Handler) handleVerify(c echo.Context) error {
	ctx := c.Request().Context()

	content, _, err := readFormFile(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	owner := c.FormValue("owner")
	if owner == "" {
		return presenter.BadRequestMessage(c, "owner parameter is required")
	}
	docType := notary.DocumentType(c.FormValue("type"))
	if !docType.Valid() {
		return presenter.BadRequestMessage(c, "invalid document type")
	}

	verdict := h.document.Verify(ctx, content, owner, docType)

	status, err := h.notarize.Status(ctx, notary.GetHashHex(content))
	if err != nil {
		slog.Warn(
			"chain status lookup failed",
			slog.String("error", err.Error()),
			slog.String("module", "rest"),
		)
		status = nil
	}

	if verdict.Valid {
		event := notary.Event{
			Type:         domain.EventTypeVerified,
			Hash:         notary.GetHashHex(content),
			DocumentType: docType,
			Timestamp:    time.Now().UTC(),
		}
		if err := h.signal.Publish(ctx, event); err != nil {
			slog.Warn(
				"failed to publish verify event",
				slog.String("error", err.Error()),
				slog.String("module", "rest"),
			)
		}
	}

	return presenter.OK(c, echo.Map{
		"verdict": verdict,
		"message": verdict.Message(),
		"chain":   status,
	})
}

func (h *Handler) handleNotarize(c echo.Context) error {
	ctx := c.Request().Context()

	content, filename, err := readFormFile(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.notarize.Notarize(ctx, content, filename)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, result)
}

func (h *Handler) handleDocumentStatus(c echo.Context) error {
	ctx := c.Request().Context()

	hash := c.Param("hash")
	if _, err := notary.HashToBytes32(hash); err != nil {
		return presenter.BadRequestMessage(c, "invalid hash")
	}

	status, err := h.notarize.Status(ctx, hash)
	if err != nil {
		return presenter.Error(c, err)
	}
	if !status.Notarized && status.Record == nil {
		return presenter.Error(c, domain.NotFoundError{Resource: "document", Key: hash})
	}

	return presenter.OK(c, status)
}

func (h *Handler) handleGasEstimate(c echo.Context) error {
	ctx := c.Request().Context()

	hash := c.QueryParam("hash")
	from := c.QueryParam("from")
	if hash == "" || from == "" {
		return presenter.BadRequestMessage(c, "hash and from parameters are required")
	}

	gas, err := h.notarize.EstimateGas(ctx, hash, from)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, echo.Map{"gas": gas})
}

func (h *Handler) handleContractInfo(c echo.Context) error {
	return presenter.OK(c, h.notarize.ContractInfo())
}

func (h *Handler) handleDocumentTypes(c echo.Context) error {
	return presenter.OK(c, notary.DocumentTypes())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type  string   `json:"type"`
	Types []string `json:"types"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	// The channels are never closed: Realtime may be mid-send when the client
	// disconnects, and a close here would race that send. Cancellation is the
	// only shutdown signal.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan notary.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Types:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Types),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
