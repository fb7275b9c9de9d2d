package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config concentra os caminhos de persistência e os ajustes da sessão.
// Tudo vem de variáveis de ambiente, com padrões utilizáveis em
// desenvolvimento; testes injetam caminhos próprios direto nos adaptadores.
type Config struct {
	DataDir string // diretório dos snapshots e dos CSVs

	ArquivoUsuarios    string // snapshot binário de usuários
	ArquivoFrequencias string // snapshot binário de frequências
	CSVExemplo         string // arquivo de intercâmbio (importação)
	CSVUsuarios        string // exportação de usuários
	CSVFrequencias     string // exportação de frequências

	Autosave bool // grava snapshot a cada mutação bem-sucedida

	HTTPAddr  string
	LogLevel  string
	Env       string // dev|prod
	SentryDSN string
}

func Load() *Config {
	dataDir := getenv("DATA_DIR", "./dados")
	cfg := &Config{
		DataDir:            dataDir,
		ArquivoUsuarios:    filepath.Join(dataDir, getenv("ARQUIVO_USUARIOS", "usuarios.dat")),
		ArquivoFrequencias: filepath.Join(dataDir, getenv("ARQUIVO_FREQUENCIAS", "frequencias.dat")),
		CSVExemplo:         filepath.Join(dataDir, getenv("CSV_EXEMPLO", "dados.csv")),
		CSVUsuarios:        filepath.Join(dataDir, getenv("CSV_USUARIOS", "usuarios.csv")),
		CSVFrequencias:     filepath.Join(dataDir, getenv("CSV_FREQUENCIAS", "frequencias.csv")),
		Autosave:           getenvBool("AUTOSAVE", true),
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		Env:                getenv("ENV", "dev"),
		SentryDSN:          os.Getenv("SENTRY_DSN"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvBool(k string, def bool) bool {
	v := strings.ToLower(os.Getenv(k))
	switch v {
	case "1", "true", "yes", "sim":
		return true
	case "0", "false", "no", "nao", "não":
		return false
	default:
		return def
	}
}
