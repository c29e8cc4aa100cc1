package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"mysteryweb/internal/builder"
	"mysteryweb/internal/logger"
	"mysteryweb/internal/source"
)

type Server struct {
	src     source.Source
	builder *builder.Builder
	log     logger.Logger
	mcp     *sdk.Server
}

func NewServer(src source.Source, b *builder.Builder, version string, log logger.Logger) *Server {
	if b == nil {
		b = builder.New(builder.WithLogger(log))
	}
	s := &Server{
		src:     src,
		builder: b,
		log:     logger.OrNop(log),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "mysteryweb",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
