package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/etnz/pennywise"
)

// This file contains one method per backend endpoint.

// Chat asks the assistant.
func (c *Client) Chat(ctx context.Context, req pennywise.ChatRequest) (pennywise.ChatResponse, error) {
	var resp pennywise.ChatResponse
	err := c.call(ctx, "/chat", http.MethodPost, "/chat", req, &resp)
	return resp, err
}

// UploadFile sends a document to the ingestion pipeline.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (pennywise.UploadResponse, error) {
	var resp pennywise.UploadResponse
	err := c.Upload(ctx, "/upload", filename, r, &resp)
	return resp, err
}

// Ledger returns the current balance and history.
func (c *Client) Ledger(ctx context.Context) (pennywise.LedgerSnapshot, error) {
	var resp pennywise.LedgerSnapshot
	err := c.call(ctx, "/ledger", http.MethodGet, "/ledger", nil, &resp)
	return resp, err
}

// AddTransaction records a cash movement. The acknowledgment is ignored.
func (c *Client) AddTransaction(ctx context.Context, req pennywise.TransactionRequest) error {
	return c.call(ctx, "/ledger/add", http.MethodPost, "/ledger/add", req, nil)
}

// ResetLedger clears the history and balance. The acknowledgment is ignored.
func (c *Client) ResetLedger(ctx context.Context) error {
	return c.call(ctx, "/ledger/reset", http.MethodPost, "/ledger/reset", nil, nil)
}

// FinanceSummary returns the solvency snapshot.
func (c *Client) FinanceSummary(ctx context.Context) (pennywise.FinanceSummary, error) {
	var resp pennywise.FinanceSummary
	err := c.call(ctx, "/finance/summary", http.MethodGet, "/finance/summary", nil, &resp)
	return resp, err
}

// VaultHistory returns the raw vault history: its shape is checked by the caller.
func (c *Client) VaultHistory(ctx context.Context) (json.RawMessage, error) {
	var resp json.RawMessage
	err := c.call(ctx, "/vault/history", http.MethodGet, "/vault/history", nil, &resp)
	return resp, err
}

// Market returns the ticker list and the news.
func (c *Client) Market(ctx context.Context) (pennywise.MarketOverview, error) {
	var resp pennywise.MarketOverview
	err := c.call(ctx, "/market", http.MethodGet, "/market", nil, &resp)
	return resp, err
}

// TickerDetail returns the expanded view of one symbol.
func (c *Client) TickerDetail(ctx context.Context, symbol string) (pennywise.TickerDetail, error) {
	var resp pennywise.TickerDetail
	err := c.call(ctx, "/market/{symbol}", http.MethodGet, "/market/"+url.PathEscape(symbol), nil, &resp)
	return resp, err
}

// Upload posts the content of r as the multipart field "file" and decodes the
// JSON response into out.
func (c *Client) Upload(ctx context.Context, path, filename string, r io.Reader, out any) error {
	filename = filepath.Base(filename)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err == nil {
		_, err = io.Copy(part, r)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return &Error{Kind: Transport, Method: http.MethodPost, Endpoint: path, Detail: "cannot read " + filename, Err: err}
	}

	payload := body.Bytes()
	contentType := mw.FormDataContentType()
	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}
	return c.do(ctx, path, http.MethodPost, path, build, out)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
