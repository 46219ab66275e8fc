package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cloudcopper/buildwatch/domain/errors"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/ports"
	"golang.org/x/net/http2"
)

const (
	messageColor        = 0x00ff00
	appPageURLFormat    = "https://steamdb.info/app/%v/"
	workflowAcceptValue = "application/vnd.github.everest-preview+json"
)

// HTTPClient is the part of http.Client used by adapters
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns client with http2 enabled transport.
// There is no timeout, a hung call fails when the transport does.
func NewHTTPClient() (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if err := configureHTTP2(transport); err != nil {
		return nil, err
	}
	return &http.Client{Transport: transport}, nil
}

func configureHTTP2(transport *http.Transport) error {
	if err := http2.ConfigureTransport(transport); err != nil {
		return fmt.Errorf("unable to configure http2: %w", err)
	}
	return nil
}

// WebhookAdapter sends notification for a target.
// It never retries, one Send is at most one request.
type WebhookAdapter struct {
	log            ports.Logger
	client         HTTPClient
	workflowAPIURL string
}

func NewWebhookAdapter(log ports.Logger, client HTTPClient, workflowAPIURL string) *WebhookAdapter {
	log = log.With(slog.String("entity", "WebhookAdapter"))
	return &WebhookAdapter{
		log:            log,
		client:         client,
		workflowAPIURL: strings.TrimSuffix(workflowAPIURL, "/"),
	}
}

type messageEmbed struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

type messageBody struct {
	Embeds          []messageEmbed  `json:"embeds"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

type workflowBody struct {
	Ref string `json:"ref"`
}

func (a *WebhookAdapter) Send(ctx context.Context, appID models.AppID, target models.Target) error {
	switch t := target.(type) {
	case *models.MessageTarget:
		return a.sendMessage(ctx, appID, t)
	case *models.WorkflowTarget:
		return a.sendWorkflow(ctx, t)
	case nil:
		return fmt.Errorf("%w: nil", errors.ErrUnsupportedTargetKind)
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnsupportedTargetKind, target.Kind())
	}
}

func (a *WebhookAdapter) sendMessage(ctx context.Context, appID models.AppID, t *models.MessageTarget) error {
	text := fmt.Sprintf("App %v has been updated", appID)
	body := messageBody{
		Embeds: []messageEmbed{{
			Title:       text,
			URL:         fmt.Sprintf(appPageURLFormat, appID),
			Description: text,
			Color:       messageColor,
		}},
		AllowedMentions: allowedMentions{Parse: []string{}},
	}
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	return a.post(ctx, t.URL, headers, body)
}

func (a *WebhookAdapter) sendWorkflow(ctx context.Context, t *models.WorkflowTarget) error {
	url := fmt.Sprintf("%v/repos/%v/actions/workflows/%v/dispatches", a.workflowAPIURL, t.Repo, t.WorkflowID)
	headers := map[string]string{
		"Accept":        workflowAcceptValue,
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + t.AccessToken,
	}
	return a.post(ctx, url, headers, workflowBody{Ref: t.Ref()})
}

func (a *WebhookAdapter) post(ctx context.Context, url string, headers map[string]string, body interface{}) error {
	blob, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDispatchTransport, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDispatchTransport, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	a.log.Debug("webhook response", slog.String("url", url), slog.Int("status", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.ErrNonSuccessStatus{StatusCode: resp.StatusCode, URL: url}
	}
	return nil
}
