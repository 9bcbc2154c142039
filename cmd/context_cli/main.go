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

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"copilot-context/internal/domain"
)

// context_cli envía un ticket de ejemplo al hook y muestra el envelope devuelto.
func main() {
	_ = godotenv.Load()

	defaultURL := os.Getenv("CONTEXT_HOOK_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080/"
	}

	url := flag.String("url", defaultURL, "hook endpoint")
	file := flag.String("file", "", "JSON file with the request body (default: built-in sample ticket)")
	platform := flag.String("platform", string(domain.PlatformZendesk), "ticketingPlatformType for the sample ticket")
	timeout := flag.Duration("timeout", 15*time.Second, "request timeout")
	flag.Parse()

	body, err := loadBody(*file, domain.PlatformType(*platform))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	status, env, raw, err := post(ctx, *url, body)
	if err != nil {
		log.Fatalf("call hook: %v", err)
	}

	fmt.Printf("status: %d\n", status)
	pretty, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		fmt.Println(string(raw))
	} else {
		fmt.Println(string(pretty))
	}

	if !env.Success {
		os.Exit(1)
	}
}

func loadBody(path string, platform domain.PlatformType) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return json.Marshal(sampleRequest(platform))
}

func sampleRequest(platform domain.PlatformType) domain.ContextRequest {
	now := time.Now().UTC()
	name := "Ana"
	return domain.ContextRequest{
		TicketID:              uuid.NewString(),
		TicketingPlatformType: platform,
		TicketAttributesData:  domain.AttributeData{"priority": "high"},
		UserAttributesData:    domain.AttributeData{"email": "ana@example.com"},
		OrgAttributesData:     domain.AttributeData{"name": "Acme"},
		Messages: []domain.Message{
			{
				ID:         uuid.NewString(),
				CreatedAt:  &now,
				Content:    "My invoice shows the wrong plan.",
				AuthorID:   "user-1",
				AuthorType: domain.AuthorUser,
				AuthorName: &name,
				Files:      []domain.File{},
			},
		},
	}
}

func post(ctx context.Context, url string, body []byte) (int, domain.Envelope[domain.ContextResponse], []byte, error) {
	var env domain.Envelope[domain.ContextResponse]

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, env, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "cli-"+uuid.NewString())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, env, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, env, nil, err
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, env, raw, fmt.Errorf("decode envelope: %w", err)
	}
	return resp.StatusCode, env, raw, nil
}
