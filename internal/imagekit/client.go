package imagekit

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront-labs/storefront-api/internal/config"
)

const authParamsTTL = 30 * time.Minute

// AuthParams lets a browser upload directly to ImageKit.
type AuthParams struct {
	Token       string `json:"token"`
	Expire      int64  `json:"expire"`
	Signature   string `json:"signature"`
	PublicKey   string `json:"publicKey"`
	URLEndpoint string `json:"urlEndpoint"`
}

// UploadResult is the subset of the upload response callers need.
type UploadResult struct {
	FileID       string `json:"fileId"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// APIError is a non-success answer from ImageKit.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("imagekit: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client talks to the ImageKit upload and media APIs.
type Client struct {
	publicKey   string
	privateKey  string
	urlEndpoint string
	uploadBase  string
	apiBase     string
	httpClient  *http.Client
	now         func() time.Time
}

// NewClient builds a client from config.
func NewClient(cfg config.ImageKitConfig) *Client {
	return &Client{
		publicKey:   cfg.PublicKey,
		privateKey:  cfg.PrivateKey,
		urlEndpoint: cfg.URLEndpoint,
		uploadBase:  strings.TrimRight(cfg.UploadBaseURL, "/"),
		apiBase:     strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		now:         time.Now,
	}
}

// AuthParams signs a one-off token for client-side uploads.
func (c *Client) AuthParams() AuthParams {
	token := uuid.NewString()
	expire := c.now().Add(authParamsTTL).Unix()
	return AuthParams{
		Token:       token,
		Expire:      expire,
		Signature:   c.sign(token, expire),
		PublicKey:   c.publicKey,
		URLEndpoint: c.urlEndpoint,
	}
}

func (c *Client) sign(token string, expire int64) string {
	mac := hmac.New(sha1.New, []byte(c.privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Upload stores file under folder and returns its CDN location.
func (c *Client) Upload(ctx context.Context, file io.Reader, fileName, folder string) (*UploadResult, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("imagekit: read upload: %w", err)
	}
	fields := map[string]string{
		"fileName":          fileName,
		"folder":            folder,
		"useUniqueFileName": "true",
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadBase+"/api/v1/files/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var result UploadResult
	if err := c.do(req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a stored file by id.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	endpoint := c.apiBase + "/v1/files/" + url.PathEscape(fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusNoContent, nil)
}

func (c *Client) do(req *http.Request, want int, out any) error {
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("imagekit: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("imagekit: read response: %w", err)
	}

	if resp.StatusCode != want {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("imagekit: decode response: %w", err)
	}
	return nil
}
