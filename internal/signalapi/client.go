package signalapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/skalibog/signalfeed/internal/config"
	"github.com/skalibog/signalfeed/internal/core"
	"github.com/skalibog/signalfeed/pkg/logger"
	"github.com/skalibog/signalfeed/pkg/models"
	"go.uber.org/zap"
)

// Ограничение размера ответа, сервер отдает последние 20 сигналов
const maxBodySize = 8 << 20

// Client клиент для эндпоинта /api/signals
type Client struct {
	http *http.Client
	url  string
}

// NewClient создает новый клиент
func NewClient(cfg config.APIConfig) *Client {
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout()},
		url:  cfg.SignalsURL(),
	}
}

// NewClientWithURL создает клиент с произвольным адресом (для тестов)
func NewClientWithURL(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient, url: url}
}

// apiError тело ответа сервера при ошибке
type apiError struct {
	Error string `json:"error"`
}

// FetchSnapshot выполняет один запрос без повторов.
// Ошибки: core.ErrFetchFailed (сеть, статус не 2xx) и core.ErrMalformedResponse.
func (c *Client) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("ошибка создания запроса: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("запрос %s: %w", requestID, err))
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.WrapError(core.ErrFetchFailed, statusError(requestID, resp.StatusCode, body))
	}
	if readErr != nil {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("запрос %s: ошибка чтения ответа: %w", requestID, readErr))
	}

	snapshot, err := models.ParseSnapshot(body)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedResponse, fmt.Errorf("запрос %s: %w", requestID, err))
	}

	logger.Debug("Получены сигналы",
		zap.String("request_id", requestID),
		zap.Int("signals", len(snapshot.Signals)),
		zap.Int("total", snapshot.TotalSignals))

	return snapshot, nil
}

// statusError формирует ошибку для ответа с неуспешным статусом
func statusError(requestID string, status int, body []byte) error {
	var payload apiError
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("запрос %s: статус %d: %s", requestID, status, payload.Error)
	}
	return fmt.Errorf("запрос %s: статус %d", requestID, status)
}
