package server

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/config"
	handlers "github.com/moderationhq/modgate/pkg/handlers/http"
	"github.com/moderationhq/modgate/pkg/middleware"
	"github.com/moderationhq/modgate/pkg/server/router"
)

type (
	ModerationServerDI struct {
		HandlerTransport    handlers.HandlerTransport
		MiddlewareTransport middleware.Transport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	ModerationServer struct {
		*BaseServer
		handlerTransport    handlers.HandlerTransport
		middlewareTransport middleware.Transport
	}
)

func NewModerationServer(di ModerationServerDI) *ModerationServer {
	return &ModerationServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		handlerTransport:    di.HandlerTransport,
		middlewareTransport: di.MiddlewareTransport,
	}
}

func (s *ModerationServer) Run() error {
	s.WithRouters(router.NewModerationRouter(s.handlerTransport, s.middlewareTransport, s.Config))
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting moderation server")
	return s.Router.Listen(addr)
}

func (s *ModerationServer) Shutdown() error {
	return s.Router.Shutdown()
}
