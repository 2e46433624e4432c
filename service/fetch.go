package service

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"transcoder/shared/apperr"
	"transcoder/shared/log"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ObjectGetter is the part of the S3 client used for s3:// sources.
type ObjectGetter interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// RemoteFetcher downloads http(s) URLs and, when an S3 client is set, s3://bucket/key
// objects. Every failure is a client error.
type RemoteFetcher struct {
	client   HTTPClient
	s3       ObjectGetter
	maxBytes int64
	logger   *zap.Logger
}

// NewRemoteFetcher builds a fetcher; s3 may be nil. A maxBytes of zero disables the
// size cap.
func NewRemoteFetcher(client HTTPClient, objects ObjectGetter, maxBytes int64, logger *zap.Logger) *RemoteFetcher {
	return &RemoteFetcher{client: client, s3: objects, maxBytes: maxBytes, logger: logger}
}

func (f *RemoteFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, f.logger)

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperr.BadRequestf("Invalid imageUrl", "%v", err)
	}

	var body []byte
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		body, err = f.fetchHTTP(ctx, u.String())
	case "s3":
		body, err = f.fetchS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	default:
		return nil, apperr.BadRequestf("Invalid imageUrl", "unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		logger.Warn("Error fetching image", zap.String("url", rawURL), zap.Error(err))
		return nil, err
	}

	logger.Debug("Fetched image", zap.String("url", rawURL), zap.Int("bytes", len(body)))

	return body, nil
}

func (f *RemoteFetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.BadRequestf("Invalid imageUrl", "%v", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &apperr.Error{Code: http.StatusBadRequest, Summary: "Failed to fetch image", Message: err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.BadRequestf("Failed to fetch image", "upstream responded with %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return f.read(resp.Body)
}

func (f *RemoteFetcher) fetchS3(ctx context.Context, bucket, key string) ([]byte, error) {
	if f.s3 == nil {
		return nil, apperr.BadRequest("S3 source is not configured")
	}
	if bucket == "" || key == "" {
		return nil, apperr.BadRequestf("Invalid imageUrl", "expected s3://bucket/key")
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	result, err := f.s3.GetObjectWithContext(ctx, input)
	if err != nil {
		return nil, &apperr.Error{Code: http.StatusBadRequest, Summary: "Failed to fetch image", Message: err.Error(), Err: err}
	}
	defer func() {
		_ = result.Body.Close()
	}()

	return f.read(result.Body)
}

func (f *RemoteFetcher) read(r io.Reader) ([]byte, error) {
	if f.maxBytes > 0 {
		r = io.LimitReader(r, f.maxBytes+1)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &apperr.Error{Code: http.StatusBadRequest, Summary: "Failed to fetch image", Message: err.Error(), Err: err}
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, apperr.BadRequestf("Failed to fetch image", "image exceeds %d bytes", f.maxBytes)
	}
	if len(body) == 0 {
		return nil, apperr.BadRequestf("Failed to fetch image", "empty response body")
	}

	return body, nil
}
