package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/educsys/frequencia-academica/internal/app"
	"github.com/educsys/frequencia-academica/internal/config"
	"github.com/educsys/frequencia-academica/internal/logging"
	"github.com/educsys/frequencia-academica/internal/observability"
	"github.com/educsys/frequencia-academica/internal/service"
	"github.com/educsys/frequencia-academica/internal/store"
)

const release = "frequencia-academica@dev"

func main() {
	// Carrega .env se existir; senão segue com o ambiente do processo
	if err := godotenv.Load(); err != nil {
		log.Println("arquivo .env não encontrado, usando variáveis de ambiente")
	}

	cfg := config.Load()

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("não foi possível iniciar o logger: %v", err)
	}
	defer lg.Closer()

	fechaSentry, err := observability.Init(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		lg.Sugar.Warnw("sentry desabilitado", "err", err)
	}
	defer fechaSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Servidor de operação (healthz/metrics); a sessão em si é local
	app.StartHTTP(ctx, cfg.HTTPAddr, cfg.DataDir)

	arquivos := store.Novo(cfg.ArquivoUsuarios, cfg.ArquivoFrequencias, lg.Sugar)
	sistema := service.Novo(arquivos, cfg.Autosave, lg.Sugar)

	sessao := app.NovaSessao(sistema, cfg, os.Stdin, os.Stdout, lg.Sugar)
	if err := sessao.Executar(); err != nil {
		lg.Sugar.Errorw("sessão encerrada com erro", "err", err)
		observability.CaptureErr(err)
		os.Exit(1)
	}
}
