package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pydevup/research-email-multi-agent-system/internal/logging"
	"github.com/pydevup/research-email-multi-agent-system/internal/tool"
)

var (
	serveHTTPAddr string
	serveStdio    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web search and Gmail tools over MCP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "localhost:8765", "HTTP listen address for the MCP endpoint")
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "also serve MCP over stdio")
}

func runServe() error {
	log := logging.Named("serve")

	server := tool.NewServer(newSearchClient(cfg), newDrafts(cfg))

	ln, err := net.Listen("tcp", serveHTTPAddr)
	if err != nil {
		return fmt.Errorf("net.Listen failed: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return server }, nil))

	srv := &http.Server{Handler: mux}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	stopHTTP, errHTTPCh := startHTTP(srv, ln, log)
	defer stopHTTP()

	var errStdioCh <-chan error
	if serveStdio {
		var stopStdio func()
		stopStdio, errStdioCh = startStdio(server, log)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		return err
	case err := <-errStdioCh:
		return err
	case <-shutdown:
		log.Info("shutdown signal received")
		return nil
	}
}

func startHTTP(srv *http.Server, ln net.Listener, log *zap.Logger) (func(), <-chan error) {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		log.Info("mcp http server listening", zap.String("addr", ln.Addr().String()))

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("http shutdown failed", zap.Error(err))
		}

		<-errCh
		log.Info("mcp http server stopped")
	}, errCh
}

func startStdio(server *mcp.Server, log *zap.Logger) (func(), <-chan error) {
	errCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		defer close(errCh)
		log.Info("mcp stdio transport starting")

		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
			errCh <- fmt.Errorf("server.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errCh
		log.Info("mcp stdio transport stopped")
	}, errCh
}
