// Command smoke runs a quick end-to-end check against a running tixbridge.
//
//	go run ./cmd/smoke -base http://localhost:8080/api/v1
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"tixbridge/internal/checkout"
	"tixbridge/internal/shared/config"
)

type SmokeResult struct {
	Name         string        `json:"name"`
	Endpoint     string        `json:"endpoint"`
	Status       int           `json:"status"`
	ResponseTime time.Duration `json:"response_time"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

type SmokeSuite struct {
	BaseURL string
	Config  *config.Config
	Client  *http.Client
	Results []SmokeResult
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	base := flag.String("base", "http://localhost:"+cfg.Port+cfg.GetAPIBasePath(), "API base URL")
	location := flag.String("location", cfg.Catalog.DefaultLocation, "city for the listing query")
	reserve := flag.Bool("reserve", false, "also create a one-seat reservation")
	flag.Parse()

	suite := &SmokeSuite{
		BaseURL: *base,
		Config:  cfg,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}

	fmt.Println("Starting smoke checks against", suite.BaseURL)

	if cfg.Redis.Enabled {
		if err := testRedisConnection(cfg); err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}
		fmt.Println("Redis connection: OK")
	}

	// Listings
	var list struct {
		Shows []struct {
			ID             string `json:"id"`
			AvailableSeats int    `json:"available_seats"`
		} `json:"shows"`
		Count int `json:"count"`
	}
	suite.run("List shows", http.MethodGet, "/shows?fetchAll=true&location="+*location, nil, http.StatusOK, &list)
	fmt.Printf("   %d shows returned\n", list.Count)

	if len(list.Shows) > 0 {
		first := list.Shows[0]
		suite.run("Get show", http.MethodGet, "/shows/"+first.ID, nil, http.StatusOK, nil)

		if *reserve && first.AvailableSeats > 0 {
			body, _ := json.Marshal(map[string]any{"show_id": first.ID, "quantity": 1})
			suite.run("Reserve", http.MethodPost, "/reservations", body, http.StatusCreated, nil)
		}
	}

	// Unsigned webhook must be rejected; signed one accepted when the secret is known
	event := []byte(`{"id":"evt_smoke","type":"checkout.session.expired","data":{"object":{"id":"cs_smoke","status":"expired"}}}`)
	suite.runWebhook("Webhook unsigned", event, "t=1,v1=00", http.StatusBadRequest)
	if cfg.Checkout.WebhookSecret != "" {
		suite.runWebhook("Webhook signed", event, checkout.Sign(cfg.Checkout.WebhookSecret, time.Now(), event), http.StatusOK)
	}

	if !suite.report() {
		os.Exit(1)
	}
}

func testRedisConnection(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}

func (s *SmokeSuite) run(name, method, endpoint string, body []byte, want int, out any) {
	req, err := http.NewRequest(method, s.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		s.record(SmokeResult{Name: name, Endpoint: endpoint, Error: err.Error()})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(s.Config.Auth.HeaderKey, s.Config.Auth.APIKey)
	s.do(name, endpoint, req, want, out)
}

func (s *SmokeSuite) runWebhook(name string, payload []byte, signature string, want int) {
	req, err := http.NewRequest(http.MethodPost, s.BaseURL+"/webhooks/checkout", bytes.NewReader(payload))
	if err != nil {
		s.record(SmokeResult{Name: name, Endpoint: "/webhooks/checkout", Error: err.Error()})
		return
	}
	req.Header.Set(checkout.SignatureHeader, signature)
	s.do(name, "/webhooks/checkout", req, want, nil)
}

func (s *SmokeSuite) do(name, endpoint string, req *http.Request, want int, out any) {
	start := time.Now()
	resp, err := s.Client.Do(req)
	if err != nil {
		s.record(SmokeResult{Name: name, Endpoint: endpoint, ResponseTime: time.Since(start), Error: err.Error()})
		return
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	result := SmokeResult{
		Name:         name,
		Endpoint:     endpoint,
		Status:       resp.StatusCode,
		ResponseTime: time.Since(start),
		Success:      resp.StatusCode == want,
	}
	if !result.Success {
		result.Error = fmt.Sprintf("expected HTTP %d, got %d: %s", want, resp.StatusCode, truncate(raw, 200))
	}

	if result.Success && out != nil {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil {
			_ = json.Unmarshal(env.Data, out)
		}
	}
	s.record(result)
}

func (s *SmokeSuite) record(result SmokeResult) {
	s.Results = append(s.Results, result)
	mark := "OK  "
	if !result.Success {
		mark = "FAIL"
	}
	fmt.Printf("%s %-18s %-40s %v\n", mark, result.Name, result.Endpoint, result.ResponseTime)
	if result.Error != "" {
		fmt.Printf("     %s\n", result.Error)
	}
}

func (s *SmokeSuite) report() bool {
	passed := 0
	for _, r := range s.Results {
		if r.Success {
			passed++
		}
	}
	fmt.Printf("\n%d/%d checks passed\n", passed, len(s.Results))
	return passed == len(s.Results)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
