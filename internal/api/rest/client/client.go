// Package client implements a client for reporting settlement incidents to an operator webhook.
package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/stampmart/stampmart/internal/config"
	"github.com/stampmart/stampmart/internal/models/modeldto"
)

// Client defines attributes of a struct available to its methods.
type Client struct {
	client       *resty.Client
	serverConfig *config.ServerConfig
	log          *zerolog.Logger
}

// InitClient initializes a resty client.
func InitClient(serverConfig *config.ServerConfig, log *zerolog.Logger) *Client {
	opsClient := resty.New()
	log.Info().Msg("ops webhook client initialized")
	return &Client{client: opsClient, serverConfig: serverConfig, log: log}
}

// ReportIncident delivers an unrecoverable settlement incident to the configured webhook.
// Without a configured address the incident is only logged, never dropped silently.
func (c *Client) ReportIncident(ctx context.Context, incident modeldto.SettlementIncident) error {
	if c.serverConfig.OpsWebhookAddress == "" {
		c.log.Error().Msg(fmt.Sprintf("no ops webhook configured, incident for order %s requires manual reconciliation: user %s, amount %s", incident.OrderNumber, incident.UserID, incident.Amount.String()))
		return nil
	}
	response, err := c.client.R().SetContext(ctx).SetBody(incident).Post(c.serverConfig.OpsWebhookAddress)
	if err != nil {
		c.log.Err(err).Msg(fmt.Sprintf("incident delivery to ops webhook failed for order %s", incident.OrderNumber))
		return err
	}
	if response.IsError() {
		c.log.Error().Msg(fmt.Sprintf("ops webhook rejected incident for order %s with status %d", incident.OrderNumber, response.StatusCode()))
	}
	return nil
}
