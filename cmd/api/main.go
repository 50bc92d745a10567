package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/container"
	"github.com/saulo-duarte/chronos-goals/internal/router"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	c, err := container.New(ctx, s)
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer c.Close()

	handler := router.FromContainer(c)

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.StartWithOptions(httpadapter.New(handler).ProxyWithContext, lambda.WithContext(ctx))
		return
	}

	if err := router.Serve(ctx, s.HTTPAddr, handler); err != nil {
		config.Logger.WithError(err).Fatal("HTTP server stopped")
	}
}
