// Package pricefeed lee la lista de precios que publica el scraper del proveedor.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
)

// Verificar en tiempo de compilación que Client implementa PriceSource.
var _ pricesync.PriceSource = (*Client)(nil)

// maxBody tope de lectura de la respuesta del feed.
const maxBody = 16 << 20

// Client obtiene []ScrapedProduct en JSON desde una URL http(s) o un archivo local (file:// o ruta).
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewClient construye el cliente. token, si no está vacío, se envía como Bearer.
func NewClient(url, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// feedEnvelope forma alternativa del feed: {"products": [...]}.
type feedEnvelope struct {
	Products []entity.ScrapedProduct `json:"products"`
}

// Fetch descarga y decodifica la lista. Un feed vacío devuelve una lista vacía sin error.
func (c *Client) Fetch(ctx context.Context) ([]entity.ScrapedProduct, error) {
	if c.url == "" {
		return nil, fmt.Errorf("pricefeed: SYNC_FEED_URL no configurado")
	}
	var (
		raw []byte
		err error
	)
	if path, ok := localPath(c.url); ok {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("pricefeed: leer archivo: %w", err)
		}
	} else {
		raw, err = c.get(ctx)
		if err != nil {
			return nil, err
		}
	}
	return Decode(raw)
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("pricefeed: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("pricefeed: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("pricefeed: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("pricefeed: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pricefeed: HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// Decode acepta un arreglo JSON de productos o un objeto {"products": [...]}.
func Decode(raw []byte) ([]entity.ScrapedProduct, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []entity.ScrapedProduct{}, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var env feedEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("pricefeed: JSON inválido: %w", err)
		}
		if env.Products == nil {
			return []entity.ScrapedProduct{}, nil
		}
		return env.Products, nil
	}
	var out []entity.ScrapedProduct
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pricefeed: JSON inválido: %w", err)
	}
	if out == nil {
		out = []entity.ScrapedProduct{}
	}
	return out, nil
}

func localPath(url string) (string, bool) {
	if p, ok := strings.CutPrefix(url, "file://"); ok {
		return p, true
	}
	if strings.Contains(url, "://") {
		return "", false
	}
	return url, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
