package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UsuariosCriados = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "frequencia", Name: "usuarios_criados_total", Help: "Usuários cadastrados",
	})
	FrequenciasRegistradas = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "frequencia", Name: "frequencias_registradas_total", Help: "Frequências registradas",
	})
	ErrosOperacao = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "frequencia", Name: "operacao_erros_total", Help: "Operações de negócio com erro",
	})
	SnapshotDuracao = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "frequencia", Name: "snapshot_gravacao_seconds", Help: "Duração da gravação de snapshot",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(UsuariosCriados, FrequenciasRegistradas, ErrosOperacao, SnapshotDuracao)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveSnapshot(d time.Duration) { SnapshotDuracao.Observe(d.Seconds()) }
