package renderer

import (
	"context"
	"net/url"

	"github.com/GriffinCanCode/viewsync/internal/boot"
	"github.com/GriffinCanCode/viewsync/internal/domain/library"
	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/viewsync/internal/transport"
	"go.uber.org/zap"
)

// Transport is the channel the session talks to the host over.
// *transport.Sender implements it.
type Transport interface {
	Send(env message.Envelope)
	Handle(t message.Type, h transport.Handler)
	OnStateChange(fn func(transport.State))
	Start(ctx context.Context) error
	Close()
}

// Viewport is the size reported with screenshot requests.
type Viewport struct {
	Width  int
	Height int
}

// Options configures Start.
type Options struct {
	// Location is the boot page URL. It sets the server port and, without
	// an injected Transport, the endpoint.
	Location *url.URL
	// Payload is the parsed boot payload.
	Payload boot.Payload

	// Transport overrides the WebSocket sender built from TransportConfig.
	Transport       Transport
	TransportConfig transport.Config

	// Library enables the node host adapter.
	Library *library.Library

	Viewport   Viewport
	HistoryMax int

	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Location == nil {
		o.Location = &url.URL{Scheme: "http", Host: "localhost"}
	}
	if o.Viewport.Width <= 0 {
		o.Viewport.Width = 1280
	}
	if o.Viewport.Height <= 0 {
		o.Viewport.Height = 800
	}
	return o
}
