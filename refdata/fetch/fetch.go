// Package fetch performs conditional HTTP retrieval of external datasets.
// It is the reusable transport behind most dataset definitions; definitions
// with unusual sources can bypass it entirely.
package fetch

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/morikuni/failure/v2"

	"github.com/marcinplaczek/app-polo/log"
	"github.com/marcinplaczek/app-polo/refdata"
)

// clientName identifies this application in the User-Agent header.
const clientName = "app-polo"

// Client is the HTTP client used for dataset downloads. Its transport logs
// requests at debug level.
var Client = &http.Client{
	Transport: log.HTTPTransport(),
}

// Request describes one conditional GET.
type Request struct {
	// URL is the dataset location. Share-page URLs of known file hosts are
	// rewritten to their direct-download form before the request.
	URL string

	// ETag, when set, is sent as If-None-Match so an unchanged dataset
	// answers 304 instead of a full body.
	ETag string

	// Parse converts the response body into structured data. A nil Parse
	// passes the raw bytes through untransformed.
	Parse func(body []byte) (any, error)
}

// Result is the outcome of a fetch.
type Result struct {
	// Data is the parsed payload. Unset when NotModified.
	Data any

	// ETag is the validation token from the response, if the server sent
	// one.
	ETag string

	// NotModified reports a 304 answer: the caller's prior data is still
	// current and was not re-parsed.
	NotModified bool
}

// Fetch performs a conditional GET for one dataset. Status 304 short-
// circuits with NotModified set; any status outside 200 and 304 fails. The
// response body is spooled to a temporary file that is deleted once the
// bytes are in memory, on success and failure alike.
func Fetch(ctx context.Context, req Request) (Result, error) {
	target, err := ResolveDirectURL(req.URL)
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{}, failure.New(ErrFetchFailed,
			failure.Message("Request could not be created"),
			failure.Context{"url": target, "error": err.Error()},
		)
	}
	httpReq.Header.Set("User-Agent", clientName+"/"+refdata.Version)
	if req.ETag != "" {
		httpReq.Header.Set("If-None-Match", req.ETag)
	}

	resp, err := Client.Do(httpReq)
	if err != nil {
		return Result{}, failure.New(ErrFetchFailed,
			failure.Message("Dataset could not be downloaded"),
			failure.Context{"url": target, "error": err.Error()},
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		log.Debug("dataset not modified", "url", target, "etag", req.ETag)
		return Result{ETag: req.ETag, NotModified: true}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, failure.New(ErrFetchFailed,
			failure.Message("Server answered with an unexpected status"),
			failure.Context{"url": target, "status": resp.Status},
		)
	}

	body, err := spool(resp.Body)
	if err != nil {
		return Result{}, failure.New(ErrFetchFailed,
			failure.Message("Response body could not be read"),
			failure.Context{"url": target, "error": err.Error()},
		)
	}

	result := Result{ETag: resp.Header.Get("ETag")}
	if req.Parse == nil {
		result.Data = body
		return result, nil
	}

	data, err := req.Parse(body)
	if err != nil {
		return Result{}, failure.New(ErrParseFailed,
			failure.Message("Dataset payload could not be parsed"),
			failure.Context{"url": target, "error": err.Error()},
		)
	}
	result.Data = data
	return result, nil
}

// spool drains r through a temporary file and returns the bytes. The file
// never outlives the call.
func spool(r io.Reader) ([]byte, error) {
	tmp, err := os.CreateTemp("", "app-polo-*.download")
	if err != nil {
		return nil, err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(tmp)
}
