package adapters

import (
	"fmt"
	"io"
	"net/http"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

// maxErrorBodySize bounds how much of a failed response is read for the error message.
const maxErrorBodySize = 64 << 10

// ErrorDecoder turns a non-OK vendor response into an UpstreamError.
type ErrorDecoder func(status int, body []byte) *domain.UpstreamError

type ContentFetcher interface {
	FetchContent(req *http.Request) ([]byte, error)
	// FetchStream returns the response body unread. The caller must close it.
	FetchStream(req *http.Request) (io.ReadCloser, error)
}

type contentFetcher struct {
	logger      outbound.LoggerPort
	client      *http.Client
	service     string
	decodeError ErrorDecoder
}

func NewContentFetcher(logger outbound.LoggerPort, client *http.Client, service string, decodeError ErrorDecoder) ContentFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &contentFetcher{
		logger:      logger,
		client:      client,
		service:     service,
		decodeError: decodeError,
	}
}

func (c *contentFetcher) FetchContent(req *http.Request) ([]byte, error) {
	body, err := c.FetchStream(req)
	if err != nil {
		return nil, err
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.ErrorWithFields(err, "Failed to close the response body", map[string]interface{}{
				"method": req.Method,
				"URL":    req.URL.String(),
			})
		}
	}(body)

	payload, err := io.ReadAll(body)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to read the response body", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
		})
		return nil, domain.NewUpstreamError(c.service, 0, "failed to read response", err)
	}

	return payload, nil
}

func (c *contentFetcher) FetchStream(req *http.Request) (io.ReadCloser, error) {
	res, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to send the HTTP request", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
		})
		return nil, domain.NewUpstreamError(c.service, 0, "request failed", err)
	}

	if res.StatusCode != http.StatusOK {
		defer res.Body.Close()
		bodyPayload, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodySize))
		upstreamErr := c.decode(res.StatusCode, bodyPayload)
		c.logger.ErrorWithFields(upstreamErr, "HTTP request returned non-OK status code", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
			"status": res.StatusCode,
		})
		return nil, upstreamErr
	}

	return res.Body, nil
}

func (c *contentFetcher) decode(status int, body []byte) *domain.UpstreamError {
	if c.decodeError != nil {
		if upstreamErr := c.decodeError(status, body); upstreamErr != nil {
			return upstreamErr
		}
	}
	return domain.NewUpstreamError(c.service, status, fmt.Sprintf("unexpected response: %s", string(body)), nil)
}
