package web

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

// MaxDocumentSize caps remote import documents. The body is never read past it.
var MaxDocumentSize int64 = 32 << 20

var client = resty.New().
	SetTimeout(30*time.Second).
	SetHeader("User-Agent", "influencer-tracker-import")

// FetchDocument downloads the body at url. Non-2xx responses are errors.
func FetchDocument(ctx context.Context, url string) ([]byte, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		snippet, _ := io.ReadAll(io.LimitReader(body, 512))
		return nil, fmt.Errorf("failed to fetch document: %s, %s", resp.Status(), snippet)
	}

	if resp.RawResponse.ContentLength > MaxDocumentSize {
		return nil, fmt.Errorf("document too large: %d bytes", resp.RawResponse.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if int64(len(data)) > MaxDocumentSize {
		return nil, fmt.Errorf("document too large: more than %d bytes", MaxDocumentSize)
	}
	return data, nil
}
