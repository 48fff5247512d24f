package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"web3radio/internal/storage"
)

const balanceQuery = `query ($id: ID!) { account(id: $id) { balance } }`

type graphRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphResponse struct {
	Data struct {
		Account *struct {
			Balance string `json:"balance"`
		} `json:"account"`
	} `json:"data"`
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// BalanceHint returns the wallet's gate-token balance as reported by the
// subgraph, as a decimal string. Best effort: results are cached in Redis for
// five minutes and any failure yields "0". Callers capture the hint once at
// join time and never re-validate it.
func BalanceHint(ctx context.Context, address string) string {
	endpoint := os.Getenv("SUBGRAPH_URL")
	if endpoint == "" {
		return "0"
	}

	cacheKey := "subgraph:balance:" + address
	if storage.RedisClient != nil {
		if cached, err := storage.RedisClient.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			return cached
		}
	}

	body, err := json.Marshal(graphRequest{
		Query:     balanceQuery,
		Variables: map[string]string{"id": address},
	})
	if err != nil {
		return "0"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "0"
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Warn("subgraph request failed: ", err)
		return "0"
	}
	defer resp.Body.Close()

	var decoded graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || decoded.Data.Account == nil {
		return "0"
	}

	balance := decoded.Data.Account.Balance
	if balance == "" {
		balance = "0"
	}
	if storage.RedisClient != nil {
		storage.RedisClient.Set(ctx, cacheKey, balance, 5*time.Minute)
	}
	return balance
}
