package main

import (
	"fmt"

	"judge-qna/config"
	"judge-qna/internal/api/healthcheck"
	ingestapi "judge-qna/internal/api/ingest"
	"judge-qna/internal/api/qna"
	"judge-qna/internal/api/search"
	"judge-qna/internal/api/upload"
	"judge-qna/internal/core/dispatch"
	"judge-qna/internal/core/responder"
	"judge-qna/internal/middleware"
	"judge-qna/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

func main() {
	app := fiber.New(fiber.Config{
		AppName:   config.Cfg.Server.AppName,
		BodyLimit: config.Cfg.Server.BodyLimit,
	})

	app.Use(middleware.PanicRecovery())
	app.Use(middleware.ConnectionLimit(middleware.NewConnectionLimiter(config.Cfg.Server.Concurrency)))

	// The QnA endpoint is registered dynamically from config; the RAG
	// pipeline is the production responder behind it. Without an OpenAI
	// key the static echo responder keeps the endpoint usable locally.
	var answer dispatch.Responder
	if config.Cfg.OpenAI.Key != "" {
		answer = responder.NewRAG(0).Answer
	} else {
		logger.Warn("%v: no openai key configured, using static responder", config.ModuleServer)
		answer = responder.Static()
	}
	d := dispatch.New(config.Cfg.Endpoint.Route, config.Cfg.Endpoint.HistoryAccepted, answer)
	qna.RegisterRoutes(app, d, config.Cfg.Endpoint.Methods)

	upload.RegisterRoutes(app)
	search.RegisterRoutes(app)
	ingestapi.RegisterRoutes(app)
	healthcheck.RegisterRoutes(app)

	addr := fmt.Sprintf(":%d", config.Cfg.Server.Port)
	logger.Info("%v: listening on %s (route %s)", config.ModuleServer, addr, d.Route())
	if err := app.Listen(addr); err != nil {
		logger.Fatal(err, "%v: server error", config.ModuleServer)
	}
}
