package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/educsys/frequencia-academica/internal/apperr"
)

// FormatoData é o formato de data usado em telas e no CSV de intercâmbio.
const FormatoData = "02/01/2006"

// Janela de datas aceita no registro de uma frequência, relativa a "agora".
const (
	JanelaPassado = 2 * 365 * 24 * time.Hour // ~2 anos
	JanelaFuturo  = 7 * 24 * time.Hour
)

var diasDaSemana = [...]string{
	"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira",
	"Quinta-feira", "Sexta-feira", "Sábado",
}

// Frequencia registra a presença (ou falta) de um aluno em uma disciplina
// numa data, junto com o CPF de quem registrou. O ID é atribuído pelo
// Sistema via contador monotônico.
type Frequencia struct {
	ID               int64
	AlunoMatricula   string
	Disciplina       string
	Data             time.Time
	Presente         bool
	RegistradoPorCPF string
	Observacao       string
}

// NovaFrequencia valida e constrói um registro. Matrícula, disciplina e
// registrador não podem ficar vazios; a data precisa cair na janela
// [-2 anos, +7 dias] em relação a agora.
func NovaFrequencia(id int64, matricula, disciplina string, data time.Time, presente bool, registradoPor string) (*Frequencia, error) {
	f := &Frequencia{
		ID:               id,
		AlunoMatricula:   strings.TrimSpace(matricula),
		Disciplina:       strings.TrimSpace(disciplina),
		Data:             data,
		Presente:         presente,
		RegistradoPorCPF: strings.TrimSpace(registradoPor),
	}
	if err := f.Validar(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validar aplica as regras de construção da frequência.
func (f *Frequencia) Validar() error {
	if strings.TrimSpace(f.AlunoMatricula) == "" {
		return apperr.DadosInvalidos("matricula", "matrícula do aluno é obrigatória")
	}
	if strings.TrimSpace(f.Disciplina) == "" {
		return apperr.DadosInvalidos("disciplina", "disciplina é obrigatória")
	}
	if strings.TrimSpace(f.RegistradoPorCPF) == "" {
		return apperr.DadosInvalidos("registradoPor", "CPF do registrador é obrigatório")
	}
	agora := time.Now()
	if f.Data.Before(agora.Add(-JanelaPassado)) {
		return apperr.DadosInvalidos("data", "data anterior ao limite de 2 anos")
	}
	if f.Data.After(agora.Add(JanelaFuturo)) {
		return apperr.DadosInvalidos("data", "data além do limite de 7 dias no futuro")
	}
	return nil
}

// Status devolve o rótulo humano do flag de presença.
func (f *Frequencia) Status() string {
	if f.Presente {
		return "Presente"
	}
	return "Falta"
}

// DataFormatada devolve a data como dd/MM/yyyy.
func (f *Frequencia) DataFormatada() string {
	if f.Data.IsZero() {
		return "N/A"
	}
	return f.Data.Format(FormatoData)
}

// DiaDaSemana devolve o nome do dia em português.
func (f *Frequencia) DiaDaSemana() string {
	return diasDaSemana[int(f.Data.Weekday())]
}

func (f *Frequencia) EhHoje() bool {
	agora := time.Now()
	return f.Data.Year() == agora.Year() && f.Data.YearDay() == agora.YearDay()
}

// EhDestaSemana considera a semana iniciando na segunda-feira.
func (f *Frequencia) EhDestaSemana() bool {
	agora := time.Now()
	inicio := inicioDaSemana(agora)
	fim := inicio.AddDate(0, 0, 7)
	return !f.Data.Before(inicio) && f.Data.Before(fim)
}

func (f *Frequencia) EhDesteMes() bool {
	agora := time.Now()
	return f.Data.Year() == agora.Year() && f.Data.Month() == agora.Month()
}

// IdadeEmDias devolve há quantos dias a aula ocorreu.
func (f *Frequencia) IdadeEmDias() int {
	return int(time.Since(f.Data).Hours() / 24)
}

// Igual compara id, presença, matrícula, disciplina e data; a observação
// fica de fora da igualdade.
func (f *Frequencia) Igual(outra *Frequencia) bool {
	if outra == nil {
		return false
	}
	return f.ID == outra.ID &&
		f.Presente == outra.Presente &&
		f.AlunoMatricula == outra.AlunoMatricula &&
		f.Disciplina == outra.Disciplina &&
		mesmoDia(f.Data, outra.Data)
}

func (f *Frequencia) String() string {
	return fmt.Sprintf("Freq[id=%d, aluno=%s, disc=%s, data=%s, pres=%s, regPor=%s]",
		f.ID, f.AlunoMatricula, f.Disciplina, f.DataFormatada(), f.Status(), f.RegistradoPorCPF)
}

// OrdenarParaRelatorio ordena por data decrescente, depois disciplina e
// matrícula crescentes (sem diferenciar maiúsculas).
func OrdenarParaRelatorio(fs []*Frequencia) {
	sort.SliceStable(fs, func(i, j int) bool {
		di, dj := truncaDia(fs[i].Data), truncaDia(fs[j].Data)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		a, b := strings.ToLower(fs[i].Disciplina), strings.ToLower(fs[j].Disciplina)
		if a != b {
			return a < b
		}
		return strings.ToLower(fs[i].AlunoMatricula) < strings.ToLower(fs[j].AlunoMatricula)
	})
}

func inicioDaSemana(t time.Time) time.Time {
	dia := truncaDia(t)
	desloc := (int(dia.Weekday()) + 6) % 7 // segunda = 0
	return dia.AddDate(0, 0, -desloc)
}

func truncaDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func mesmoDia(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
