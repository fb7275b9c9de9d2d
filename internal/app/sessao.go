// Package app é a casca de apresentação: uma sessão interativa de
// terminal que conversa com o Sistema. Nenhuma regra de negócio vive
// aqui; toda mutação passa pelas operações do service.
package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/educsys/frequencia-academica/internal/apperr"
	"github.com/educsys/frequencia-academica/internal/config"
	"github.com/educsys/frequencia-academica/internal/export"
	"github.com/educsys/frequencia-academica/internal/metrics"
	"github.com/educsys/frequencia-academica/internal/models"
	"github.com/educsys/frequencia-academica/internal/observability"
	"github.com/educsys/frequencia-academica/internal/service"
)

const tentativasLogin = 3

type Sessao struct {
	sistema *service.Sistema
	cfg     *config.Config
	log     *zap.SugaredLogger

	in  *bufio.Scanner
	out io.Writer
	eof bool // a entrada acabou; nenhuma tela deve voltar a ler

	usuario models.Usuario // usuário autenticado
}

func NovaSessao(sistema *service.Sistema, cfg *config.Config, in io.Reader, out io.Writer, log *zap.SugaredLogger) *Sessao {
	return &Sessao{
		sistema: sistema,
		cfg:     cfg,
		log:     log,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Executar roda login e o laço de menu até o usuário pedir para sair.
func (s *Sessao) Executar() error {
	fmt.Fprintln(s.out, "=== Sistema de Frequência Acadêmica ===")
	if !s.login() {
		return fmt.Errorf("login falhou após %d tentativas", tentativasLogin)
	}
	fmt.Fprintf(s.out, "\nBem-vindo(a), %s\n", models.DescricaoCompleta(s.usuario))

	for {
		opcoes := MenuParaUsuario(s.usuario)
		fmt.Fprintln(s.out)
		for i, o := range opcoes {
			fmt.Fprintf(s.out, "%2d. %s\n", i+1, o.Rotulo)
		}
		escolha, ok := s.leInt("Opção: ")
		if s.eof {
			return s.encerraPorFimDaEntrada()
		}
		if !ok || escolha < 1 || escolha > len(opcoes) {
			fmt.Fprintln(s.out, "Opção inválida.")
			continue
		}
		if !opcoes[escolha-1].Exec(s) {
			return nil
		}
		if s.eof {
			return s.encerraPorFimDaEntrada()
		}
	}
}

// encerraPorFimDaEntrada grava os snapshots e sai quando a entrada acaba
// (pipe esgotado ou terminal fechado); sem terminal não há como perguntar.
func (s *Sessao) encerraPorFimDaEntrada() error {
	fmt.Fprintln(s.out, "\nEntrada encerrada, salvando e saindo.")
	if err := s.sistema.Salvar(); err != nil {
		s.mostraErro(err)
	}
	return nil
}

func (s *Sessao) login() bool {
	for i := 0; i < tentativasLogin; i++ {
		email := s.leLinha("Email: ")
		senha := s.leLinha("Senha: ")
		if s.eof {
			return false
		}
		if u, ok := s.sistema.Autenticar(email, senha); ok {
			s.usuario = u
			s.log.Infow("login", "email", u.Dados().Email, "perfil", u.Perfil())
			return true
		}
		fmt.Fprintln(s.out, "Email ou senha incorretos.")
	}
	return false
}

// ===== Telas =====

// telaResumo mostra o relatório específico da variante do usuário logado.
func (s *Sessao) telaResumo() bool {
	fmt.Fprintln(s.out, s.usuario.RelatorioPersonalizado())
	fmt.Fprintln(s.out, "Permissões:", strings.Join(s.usuario.Permissoes(), ", "))
	if a, ok := s.usuario.(*models.Aluno); ok {
		fmt.Fprint(s.out, s.sistema.RelatorioFrequenciaAluno(a.Matricula))
	}
	return true
}

func (s *Sessao) telaListarUsuarios() bool {
	if !s.exigeGestaoUsuarios("listar usuários") {
		return true
	}
	for _, u := range s.sistema.ListarUsuarios() {
		d := u.Dados()
		fmt.Fprintf(s.out, "ID:%d | %s | %s | CPF:%s | Ativo:%v\n", d.ID, u.Perfil(), models.DescricaoCompleta(u), d.CPF, d.Ativo)
	}
	return true
}

func (s *Sessao) telaCadastrarUsuario() bool {
	if !s.exigeGestaoUsuarios("cadastrar usuário") {
		return true
	}
	tipo := s.leLinha("Tipo (Aluno/Professor/Coordenador/Administrador): ")
	nome := s.leLinha("Nome: ")
	email := s.leLinha("Email: ")
	cpf := s.leLinha("CPF: ")
	senha := s.leLinha("Senha: ")

	var u models.Usuario
	switch models.Perfil(strings.TrimSpace(tipo)) {
	case models.PerfilAluno:
		matricula := s.leLinha("Matrícula: ")
		curso := s.leLinha("Curso: ")
		semestre, _ := s.leInt("Semestre: ")
		u = models.NovoAluno(0, nome, email, cpf, senha, matricula, curso, semestre)
	case models.PerfilProfessor:
		area := s.leLinha("Área: ")
		titulacao := s.leLinha("Titulação: ")
		u = models.NovoProfessor(0, nome, email, cpf, senha, area, titulacao)
	case models.PerfilCoordenador:
		curso := s.leLinha("Curso coordenado: ")
		u = models.NovoCoordenador(0, nome, email, cpf, senha, curso)
	case models.PerfilAdministrador:
		nivel := s.leLinha("Nível de acesso: ")
		u = models.NovoAdministrador(0, nome, email, cpf, senha, nivel)
	default:
		fmt.Fprintln(s.out, "Tipo desconhecido.")
		return true
	}
	if err := s.sistema.AdicionarUsuario(u); err != nil {
		s.mostraErro(err)
		return true
	}
	fmt.Fprintln(s.out, "Usuário cadastrado.")
	return true
}

func (s *Sessao) telaRemoverUsuario() bool {
	if !s.exigeGestaoUsuarios("remover usuário") {
		return true
	}
	cpf := s.leLinha("CPF do usuário: ")
	if err := s.sistema.RemoverUsuario(cpf); err != nil {
		s.mostraErro(err)
		return true
	}
	fmt.Fprintln(s.out, "Usuário removido.")
	return true
}

func (s *Sessao) telaRegistrarFrequencia() bool {
	if !s.usuario.PodeEditarFrequencia() {
		s.mostraErro(apperr.AcessoNegado(s.usuario.Dados().CPF, "registrar frequência"))
		return true
	}
	matricula := s.leLinha("Matrícula do aluno: ")
	disciplina := s.leLinha("Disciplina: ")
	dataTexto := s.leLinha("Data (dd/mm/aaaa, vazio = hoje): ")
	data := time.Now()
	if strings.TrimSpace(dataTexto) != "" {
		var err error
		data, err = time.Parse(models.FormatoData, strings.TrimSpace(dataTexto))
		if err != nil {
			fmt.Fprintln(s.out, "Data inválida.")
			return true
		}
	}
	presente := strings.EqualFold(s.leLinha("Presente? (s/n): "), "s")
	observacao := s.leLinha("Observação (opcional): ")

	f, err := models.NovaFrequencia(0, matricula, disciplina, data, presente, s.usuario.Dados().CPF)
	if err != nil {
		s.mostraErro(err)
		return true
	}
	f.Observacao = strings.TrimSpace(observacao)
	if err := s.sistema.AdicionarFrequencia(f); err != nil {
		s.mostraErro(err)
		return true
	}
	fmt.Fprintf(s.out, "Frequência registrada (id %d).\n", f.ID)
	return true
}

func (s *Sessao) telaRemoverFrequencia() bool {
	id, ok := s.leInt("ID da frequência: ")
	if !ok {
		fmt.Fprintln(s.out, "ID inválido.")
		return true
	}
	if err := s.sistema.RemoverFrequencia(int64(id)); err != nil {
		s.mostraErro(err)
		return true
	}
	fmt.Fprintln(s.out, "Frequência removida.")
	return true
}

func (s *Sessao) telaRelatorioGeral() bool {
	fmt.Fprint(s.out, s.sistema.RelatorioGeralUsuarios())
	return true
}

func (s *Sessao) telaRelatorioDisciplina() bool {
	disciplina := s.leLinha("Disciplina: ")
	fmt.Fprint(s.out, s.sistema.RelatorioFrequenciaPorDisciplina(disciplina))
	return true
}

func (s *Sessao) telaRelatorioAluno() bool {
	matricula := s.leLinha("Matrícula: ")
	fmt.Fprint(s.out, s.sistema.RelatorioFrequenciaAluno(matricula))
	return true
}

func (s *Sessao) telaExportarCSV() bool {
	if err := s.sistema.ExportarCSV(s.cfg.CSVUsuarios, s.cfg.CSVFrequencias); err != nil {
		s.mostraErro(err)
		return true
	}
	fmt.Fprintf(s.out, "Exportado para %s e %s\n", s.cfg.CSVUsuarios, s.cfg.CSVFrequencias)
	return true
}

func (s *Sessao) telaImportarCSV() bool {
	caminho := s.leLinha(fmt.Sprintf("Arquivo (vazio = %s): ", s.cfg.CSVExemplo))
	if strings.TrimSpace(caminho) == "" {
		caminho = s.cfg.CSVExemplo
	}
	nu, nf, err := s.sistema.ImportarDados(caminho)
	if err != nil {
		s.mostraErro(err)
		return true
	}
	fmt.Fprintf(s.out, "Importados %d usuários e %d frequências.\n", nu, nf)
	return true
}

func (s *Sessao) telaGerarExemplo() bool {
	if err := s.sistema.GerarCSVExemplo(s.cfg.CSVExemplo); err != nil {
		s.mostraErro(err)
		return true
	}
	fmt.Fprintf(s.out, "Arquivo de exemplo gravado em %s\n", s.cfg.CSVExemplo)
	return true
}

func (s *Sessao) telaExportarPlanilha() bool {
	p, err := export.PlanilhaSistema(s.sistema.ListarUsuarios(), s.sistema.ListarFrequencias())
	if err != nil {
		s.mostraErro(err)
		return true
	}
	caminho, err := p.SalvarTemp("frequencia")
	if err != nil {
		s.mostraErro(err)
		return true
	}
	fmt.Fprintf(s.out, "Planilha gravada em %s\n", caminho)
	return true
}

// telaSair grava os snapshots e encerra; falha de gravação é mostrada e
// o usuário decide se sai mesmo assim.
func (s *Sessao) telaSair() bool {
	if err := s.sistema.Salvar(); err != nil {
		s.mostraErro(err)
		if !strings.EqualFold(s.leLinha("Sair sem salvar? (s/n): "), "s") {
			return true
		}
	}
	fmt.Fprintln(s.out, "Até logo.")
	return false
}

// ===== Auxiliares =====

func (s *Sessao) exigeGestaoUsuarios(operacao string) bool {
	if s.usuario.PodeGerenciarUsuarios() {
		return true
	}
	s.mostraErro(apperr.AcessoNegado(s.usuario.Dados().CPF, operacao))
	return false
}

func (s *Sessao) mostraErro(err error) {
	metrics.ErrosOperacao.Inc()
	if apperr.EhCritico(err) {
		observability.CaptureErr(err)
	}
	var e *apperr.Erro
	if errors.As(err, &e) {
		fmt.Fprintln(s.out, "Erro:", e.Error())
		fmt.Fprintln(s.out, e.Detalhes())
		return
	}
	fmt.Fprintln(s.out, "Erro:", err)
}

func (s *Sessao) leLinha(prompt string) string {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		s.eof = true
		return ""
	}
	return strings.TrimSpace(s.in.Text())
}

func (s *Sessao) leInt(prompt string) (int, bool) {
	v, err := strconv.Atoi(s.leLinha(prompt))
	return v, err == nil
}
