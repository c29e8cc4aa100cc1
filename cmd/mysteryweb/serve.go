package main

import (
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"mysteryweb/internal/mcp"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	b, recorder := s.newBuilder()
	s.log.Info("serving MCP over stdio", "source", s.cfg.Source.Kind)
	err = mcp.NewServer(s.src, b, version, s.log).Run(ctx, &sdk.StdioTransport{})
	logBuildStats(s.log, "MCP server stopped", recorder)
	return err
}
