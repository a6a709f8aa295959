package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trueside/fantoken/api"
	lerrors "github.com/trueside/fantoken/errors"
	"github.com/trueside/fantoken/jsonx"
	"github.com/trueside/fantoken/service"
)

const clientTimeout = 15 * time.Second

var opsClient = &http.Client{Timeout: clientTimeout}

// postOp sends one mutation to the ops listener of a running `fantoken serve`.
// A ledger rejection comes back as its *LedgerError together with the Result.
func postOp(ctx context.Context, server, op string, req api.OpRequest) (*service.Result, error) {
	body, err := jsonx.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := strings.TrimSuffix(opsBaseURL(server), "/") + "/ops/" + op
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := opsClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach ledger server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read server response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnprocessableEntity:
		var res service.Result
		if err := jsonx.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("failed to decode server response: %w", err)
		}
		if res.Code != 0 {
			return &res, lerrors.FromCode(res.Code)
		}
		return &res, nil
	default:
		var e struct {
			Error string `json:"error"`
		}
		if jsonx.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return nil, fmt.Errorf("ledger server returned %d: %s", resp.StatusCode, e.Error)
	}
}

func opsBaseURL(server string) string {
	if strings.HasPrefix(server, "http://") || strings.HasPrefix(server, "https://") {
		return server
	}
	return "http://" + server
}
