package Storage

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CloudinaryProvider talks to the Cloudinary upload REST API directly.
// baseURL is swappable so tests can point it at a stub server.
type CloudinaryProvider struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

func NewCloudinaryProvider(cloudName, apiKey, apiSecret string) *CloudinaryProvider {
	return &CloudinaryProvider{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   "https://api.cloudinary.com",
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *CloudinaryProvider) Ping() error {
	if p.cloudName == "" || p.apiKey == "" || p.apiSecret == "" {
		return fmt.Errorf("cloudinary credentials incomplete")
	}

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/v1_1/%s/ping", p.baseURL, p.cloudName), nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.apiKey, p.apiSecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudinary ping returned %d", resp.StatusCode)
	}
	return nil
}

func (p *CloudinaryProvider) Upload(data []byte, publicID, resourceType string) (string, string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return "", "", err
		}
	}
	if err := writer.WriteField("api_key", p.apiKey); err != nil {
		return "", "", err
	}
	if err := writer.WriteField("signature", p.sign(params)); err != nil {
		return "", "", err
	}
	part, err := writer.CreateFormFile("file", "blob")
	if err != nil {
		return "", "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", "", err
	}
	if err := writer.Close(); err != nil {
		return "", "", err
	}

	uploadURL := fmt.Sprintf("%s/v1_1/%s/%s/upload", p.baseURL, p.cloudName, resourceType)
	resp, err := p.client.Post(uploadURL, writer.FormDataContentType(), &body)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", "", fmt.Errorf("cloudinary upload returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("failed to decode cloudinary response: %w", err)
	}
	if result.SecureURL == "" {
		return "", "", fmt.Errorf("cloudinary response missing secure_url")
	}
	return result.SecureURL, result.PublicID, nil
}

func (p *CloudinaryProvider) Destroy(publicID, resourceType string) (bool, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("api_key", p.apiKey)
	form.Set("signature", p.sign(params))

	destroyURL := fmt.Sprintf("%s/v1_1/%s/%s/destroy", p.baseURL, p.cloudName, resourceType)
	resp, err := p.client.PostForm(destroyURL, form)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("cloudinary destroy returned %d", resp.StatusCode)
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode cloudinary response: %w", err)
	}
	// "not found" is a clean no-op, anything else unexpected is an error
	switch result.Result {
	case "ok":
		return true, nil
	case "not found":
		return false, nil
	default:
		return false, fmt.Errorf("cloudinary destroy result: %s", result.Result)
	}
}

// sign produces the Cloudinary request signature: the params sorted by key,
// joined query-style, with the API secret appended, hashed with SHA-1.
func (p *CloudinaryProvider) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + p.apiSecret))
	return hex.EncodeToString(sum[:])
}
