// Package cloudinary implements imagestore.Store against the Cloudinary
// upload API using signed requests.
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1" // #nosec G505 -- Cloudinary request signatures are defined as SHA-1
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/imagestore"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/httpclient"
)

// DefaultBaseURL is the Cloudinary API root.
const DefaultBaseURL = "https://api.cloudinary.com/v1_1"

const upstreamName = "cloudinary"

// Config holds Cloudinary credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
}

// Store implements imagestore.Store using the Cloudinary REST API.
type Store struct {
	cfg    Config
	client *httpclient.CircuitBreakerClient
	now    func() time.Time
}

var _ imagestore.Store = (*Store)(nil)

// New creates a Cloudinary store sending requests through client.
func New(cfg Config, client *httpclient.CircuitBreakerClient) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Store{cfg: cfg, client: client, now: time.Now}
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

type destroyResponse struct {
	Result string `json:"result"`
}

// Upload sends the image as a signed multipart upload.
func (s *Store) Upload(ctx context.Context, input *imagestore.UploadInput) (*domain.Image, error) {
	params := map[string]string{
		"timestamp": strconv.FormatInt(s.now().Unix(), 10),
	}
	if input.Folder != "" {
		params["folder"] = input.Folder
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range s.signedParams(params) {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write upload field %s: %w", k, err)
		}
	}
	filename := input.Filename
	if filename == "" {
		filename = "upload"
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create upload file part: %w", err)
	}
	if _, err := part.Write(input.Data); err != nil {
		return nil, fmt.Errorf("write upload file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close upload body: %w", err)
	}

	resp, err := s.client.Post(ctx, s.endpoint("upload"), mw.FormDataContentType(), bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, apperrors.Upstream("image upload failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, upstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.Upstream("image upload failed", fmt.Errorf("decode upload response: %w", err))
	}

	imageURL := out.SecureURL
	if imageURL == "" {
		imageURL = out.URL
	}
	return &domain.Image{PublicID: out.PublicID, URL: imageURL}, nil
}

// Destroy deletes an image by its public id. "not found" counts as success.
func (s *Store) Destroy(ctx context.Context, publicID string) error {
	form := url.Values{}
	for k, v := range s.signedParams(map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(s.now().Unix(), 10),
	}) {
		form.Set(k, v)
	}

	resp, err := s.client.Post(ctx, s.endpoint("destroy"), "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.Upstream("image destroy failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, upstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	var out destroyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return apperrors.Upstream("image destroy failed", fmt.Errorf("decode destroy response: %w", err))
	}
	switch out.Result {
	case "ok", "not found":
		return nil
	default:
		return apperrors.Upstream("image destroy failed", fmt.Errorf("unexpected result %q", out.Result))
	}
}

func (s *Store) endpoint(action string) string {
	return fmt.Sprintf("%s/%s/image/%s", s.cfg.BaseURL, url.PathEscape(s.cfg.CloudName), action)
}

// signedParams returns params plus api_key and signature.
func (s *Store) signedParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	out["signature"] = Sign(params, s.cfg.APISecret)
	out["api_key"] = s.cfg.APIKey
	return out
}

// Sign computes the request signature: the SHA-1 hex digest of the
// parameters sorted by name and joined as "k=v&k=v", followed by the secret.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// Ping verifies the configured credentials can reach the API root.
func (s *Store) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.cfg.BaseURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
