package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/attestia/notary"
)

const (
	defaultTimeout = 10 * time.Second

	contractInfoCacheKey = "contract-info"
)

// Client talks to a remote notary node.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	userAgent string
	baseURL   string
}

func New(baseURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(10*time.Minute, 15*time.Minute),
		userAgent: "notary-client/1.0",
		baseURL:   baseURL,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) postFile(ctx context.Context, path string, content []byte, filename string, fields map[string]string, response any) error {

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to build multipart body: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to build multipart body: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build multipart body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

// Sign uploads content for signing and returns the signed bytes.
func (c *Client) Sign(ctx context.Context, content []byte, filename, ownerID string, docType notary.DocumentType, issuer string) ([]byte, error) {

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %v", err)
	}
	writer.WriteField("owner", ownerID)
	writer.WriteField("type", string(docType))
	writer.WriteField("issuer", issuer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/sign", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

type VerifyResponse struct {
	Verdict notary.Verdict  `json:"verdict"`
	Message string          `json:"message"`
	Chain   json.RawMessage `json:"chain,omitempty"`
}

// Verify uploads content for verification against the expected owner and type.
func (c *Client) Verify(ctx context.Context, content []byte, filename, ownerID string, docType notary.DocumentType) (*VerifyResponse, error) {
	var response VerifyResponse
	err := c.postFile(ctx, "/api/v1/verify", content, filename, map[string]string{
		"owner": ownerID,
		"type":  string(docType),
	}, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

type NotarizeResponse struct {
	Hash     string         `json:"hash"`
	Filename string         `json:"filename"`
	Tx       notary.ChainTx `json:"tx"`
}

// Notarize uploads content and returns its hash plus the unsigned storeHash
// transaction for a wallet to submit.
func (c *Client) Notarize(ctx context.Context, content []byte, filename string) (*NotarizeResponse, error) {
	var response NotarizeResponse
	err := c.postFile(ctx, "/api/v1/notarize", content, filename, nil, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ContractInfo fetches the node's contract coordinates. The answer is stable
// per node, so it is cached.
func (c *Client) ContractInfo(ctx context.Context) (*notary.ContractInfo, error) {

	if cached, found := c.cache.Get(contractInfoCacheKey); found {
		info := cached.(notary.ContractInfo)
		return &info, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/contract-info", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info notary.ContractInfo
	err = json.NewDecoder(resp.Body).Decode(&info)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	c.cache.Set(contractInfoCacheKey, info, cache.DefaultExpiration)

	return &info, nil
}
