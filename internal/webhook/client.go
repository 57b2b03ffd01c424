package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/medcart/internal/apperr"
)

// MatchingClient — вебхук сопоставления "есть ли медикамент на складе".
type MatchingClient struct {
	url   string
	httpc *http.Client
}

func NewMatchingClient(url string, timeout time.Duration) *MatchingClient {
	return &MatchingClient{url: url, httpc: &http.Client{Timeout: timeout}}
}

type MatchResult struct {
	Found bool
	Text  string
}

type matchResponse struct {
	Output struct {
		Found string `json:"found"`
		Text  string `json:"text"`
	} `json:"output"`
}

// Check шлёт {medication_name, medication_id, amount} и ждёт список
// [{output:{found:"Yes"|"No", text}}]; не-200 и пустой/кривой ответ — ошибка.
func (c *MatchingClient) Check(ctx context.Context, name, medicationID string, amount float64) (*MatchResult, error) {
	payload := map[string]any{
		"medication_name": name,
		"medication_id":   medicationID,
		"amount":          amount,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindExternal, "AI check request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.External(
			fmt.Sprintf("Webhook request failed (%d)", resp.StatusCode),
			string(raw),
		)
	}

	var list []matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil || len(list) == 0 {
		return nil, apperr.External("Invalid response format from webhook", "Expected a non-empty list")
	}

	out := list[0].Output
	return &MatchResult{
		Found: strings.EqualFold(out.Found, "yes"),
		Text:  out.Text,
	}, nil
}

// CartsClient — вебхук доступности корзин.
type CartsClient struct {
	url   string
	httpc *http.Client
}

func NewCartsClient(url string, timeout time.Duration) *CartsClient {
	return &CartsClient{url: url, httpc: &http.Client{Timeout: timeout}}
}

// Fetch возвращает список корзиноподобных записей; одиночный объект
// нормализуется в список из одного элемента.
func (c *CartsClient) Fetch(ctx context.Context) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindExternal, "Carts check request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.External(
			fmt.Sprintf("Failed to fetch carts (%d)", resp.StatusCode),
			string(raw),
		)
	}

	var parsed any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.Wrap(err, apperr.KindExternal, "carts response decode failed")
	}

	switch v := parsed.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, el := range v {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, apperr.External("Invalid carts response format", "Expected list or dict")
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, apperr.External("Invalid carts response format", "Expected list or dict")
	}
}
