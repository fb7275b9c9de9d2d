package service

import (
	"fmt"
	"strings"

	"github.com/educsys/frequencia-academica/internal/models"
)

// RelatorioGeralUsuarios lista todos os usuários com perfil e situação.
func (s *Sistema) RelatorioGeralUsuarios() string {
	var sb strings.Builder
	sb.WriteString("=== Relatório Geral de Usuários ===\n")
	for _, u := range s.usuarios {
		d := u.Dados()
		fmt.Fprintf(&sb, "ID:%d | %s | Email:%s | Ativo:%v\n", d.ID, u.Perfil(), d.Email, d.Ativo)
	}
	if len(s.usuarios) == 0 {
		sb.WriteString("Nenhum usuário cadastrado.\n")
	}
	return sb.String()
}

// RelatorioFrequenciaPorDisciplina resume presenças e faltas da disciplina,
// com os registros ordenados para exibição.
func (s *Sistema) RelatorioFrequenciaPorDisciplina(disciplina string) string {
	fs := s.BuscarFrequenciasPorDisciplina(disciplina)
	titulo := fmt.Sprintf("=== Relatório de Frequência: Disciplina %s ===\n", disciplina)
	return montaRelatorio(titulo, fs)
}

// RelatorioFrequenciaAluno resume presenças e faltas do aluno.
func (s *Sistema) RelatorioFrequenciaAluno(matricula string) string {
	fs := s.BuscarFrequenciasPorAluno(matricula)
	titulo := fmt.Sprintf("=== Relatório de Frequência: Aluno %s ===\n", matricula)
	return montaRelatorio(titulo, fs)
}

func montaRelatorio(titulo string, fs []*models.Frequencia) string {
	var sb strings.Builder
	sb.WriteString(titulo)

	// sem registros não há divisão: relata e encerra
	if len(fs) == 0 {
		sb.WriteString("Nenhuma frequência registrada.\n")
		return sb.String()
	}

	presentes := 0
	for _, f := range fs {
		if f.Presente {
			presentes++
		}
	}
	total := len(fs)
	faltas := total - presentes
	taxaPresenca := float64(presentes) / float64(total) * 100
	taxaFalta := float64(faltas) / float64(total) * 100

	fmt.Fprintf(&sb, "Total de aulas: %d\n", total)
	fmt.Fprintf(&sb, "Presenças: %d (%.1f%%)\n", presentes, taxaPresenca)
	fmt.Fprintf(&sb, "Faltas: %d (%.1f%%)\n", faltas, taxaFalta)

	ordenadas := make([]*models.Frequencia, len(fs))
	copy(ordenadas, fs)
	models.OrdenarParaRelatorio(ordenadas)
	for _, f := range ordenadas {
		fmt.Fprintf(&sb, "FreqID:%d | AlunoMat:%s | Disciplina:%s | Data:%s (%s) | Status:%s | RegistradoPor:%s\n",
			f.ID, f.AlunoMatricula, f.Disciplina, f.DataFormatada(), f.DiaDaSemana(), f.Status(), f.RegistradoPorCPF)
	}
	return sb.String()
}
