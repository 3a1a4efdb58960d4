package spi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/config"
	"github.com/wso2/psd2-consent-mgt/internal/system/constants"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
)

// Connector endpoints, relative to the configured base URL.
const (
	endpointAuthorisePsu       = "/psu/authorise"
	endpointAuthorisationCode  = "/sca/authorisation-code"
	endpointVerifyScaData      = "/sca/verify"
	endpointStartDecoupled     = "/sca/decoupled"
	errorCodeUnknownMethod     = "SCA_METHOD_UNKNOWN"
	defaultConnectorTimeout    = 30 * time.Second
	maxConnectorResponseLength = 1 << 20
)

// HTTPClient calls an ASPSP connector that exposes the SCA operations as JSON
// endpoints.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

var _ AuthorisationSPI = (*HTTPClient)(nil)

type connectorRequest struct {
	PsuData                model.PsuIdData `json:"psuData"`
	Password               string          `json:"password,omitempty"`
	AuthenticationMethodID string          `json:"authenticationMethodId,omitempty"`
	ScaAuthenticationData  string          `json:"scaAuthenticationData,omitempty"`
}

type connectorResponse struct {
	Authorised   bool                   `json:"authorised"`
	Methods      []AuthenticationMethod `json:"scaMethods,omitempty"`
	Challenge    *Challenge             `json:"challenge,omitempty"`
	Valid        bool                   `json:"valid"`
	ErrorCode    string                 `json:"errorCode,omitempty"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
}

// NewHTTPClient creates a connector client from cfg.
func NewHTTPClient(cfg config.SPIConfig) *HTTPClient {
	timeout := defaultConnectorTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: cfg.BaseURL,
		logger:  log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SPIClient")),
	}
}

// New returns the connector client for cfg, or the mock when no connector is configured.
func New(cfg config.SPIConfig) AuthorisationSPI {
	if cfg.BaseURL == "" {
		return NewMockSPI()
	}
	return NewHTTPClient(cfg)
}

func (c *HTTPClient) AuthorisePsu(ctx context.Context, psu model.PsuIdData, password string) (*PsuAuthorisation, error) {
	resp, err := c.call(ctx, endpointAuthorisePsu, connectorRequest{PsuData: psu, Password: password})
	if err != nil {
		return nil, err
	}
	return &PsuAuthorisation{Authorised: resp.Authorised, Methods: resp.Methods}, nil
}

func (c *HTTPClient) RequestAuthorisationCode(ctx context.Context, psu model.PsuIdData, methodID string) (*Challenge, error) {
	resp, err := c.call(ctx, endpointAuthorisationCode, connectorRequest{PsuData: psu, AuthenticationMethodID: methodID})
	if err != nil {
		return nil, err
	}
	return challengeOf(resp, methodID), nil
}

func (c *HTTPClient) VerifyScaAuthorisation(ctx context.Context, psu model.PsuIdData, methodID,
	authenticationData string) (bool, error) {
	resp, err := c.call(ctx, endpointVerifyScaData, connectorRequest{
		PsuData:                psu,
		AuthenticationMethodID: methodID,
		ScaAuthenticationData:  authenticationData,
	})
	if err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (c *HTTPClient) StartDecoupled(ctx context.Context, psu model.PsuIdData, methodID string) (*Challenge, error) {
	resp, err := c.call(ctx, endpointStartDecoupled, connectorRequest{PsuData: psu, AuthenticationMethodID: methodID})
	if err != nil {
		return nil, err
	}
	return challengeOf(resp, methodID), nil
}

func challengeOf(resp *connectorResponse, methodID string) *Challenge {
	if resp.Challenge == nil {
		return &Challenge{MethodID: methodID}
	}
	if resp.Challenge.MethodID == "" {
		resp.Challenge.MethodID = methodID
	}
	return resp.Challenge
}

// call posts body to endpoint. Connector errors with the unknown-method code map
// to ErrUnknownMethod; every other failure is returned as a plain error.
func (c *HTTPClient) call(ctx context.Context, endpoint string, body connectorRequest) (*connectorResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal connector request: %w", err)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create connector request: %w", err)
	}
	req.Header.Set(constants.HeaderContentType, "application/json")
	req.Header.Set("Accept", "application/json")
	if correlationID := log.CorrelationID(ctx); correlationID != "" {
		req.Header.Set(constants.CorrelationIDHeaderName, correlationID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Connector call failed", log.String("url", url), log.Error(err))
		return nil, fmt.Errorf("connector call %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxConnectorResponseLength))
	if err != nil {
		return nil, fmt.Errorf("failed to read connector response: %w", err)
	}
	c.logger.Debug("Connector response received",
		log.String("url", url),
		log.Int("status", resp.StatusCode),
		log.Int64("duration_ms", time.Since(start).Milliseconds()))

	var out connectorResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("failed to decode connector response: %w", err)
		}
	}
	if out.ErrorCode == errorCodeUnknownMethod {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, body.AuthenticationMethodID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Connector returned non-success status",
			log.Int("status", resp.StatusCode),
			log.String("error_code", out.ErrorCode))
		return nil, errors.New(connectorError(resp.StatusCode, out))
	}
	return &out, nil
}

func connectorError(status int, out connectorResponse) string {
	if out.ErrorMessage != "" {
		return fmt.Sprintf("connector returned status %d: %s", status, out.ErrorMessage)
	}
	return fmt.Sprintf("connector returned status %d", status)
}
