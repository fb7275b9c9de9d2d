package service

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/educsys/frequencia-academica/internal/apperr"
	"github.com/educsys/frequencia-academica/internal/logging"
	"github.com/educsys/frequencia-academica/internal/models"
	"github.com/educsys/frequencia-academica/internal/store"
)

func novoSistema(t *testing.T) *Sistema {
	t.Helper()
	dir := t.TempDir()
	arq := store.Novo(filepath.Join(dir, "usuarios.dat"), filepath.Join(dir, "frequencias.dat"), logging.Nop().Sugar)
	return Novo(arq, true, logging.Nop().Sugar)
}

func adicionaAluno(t *testing.T, s *Sistema, nome, email, cpf, matricula string) *models.Aluno {
	t.Helper()
	a := models.NovoAluno(0, nome, email, cpf, "senha", matricula, "Engenharia", 1)
	if err := s.AdicionarUsuario(a); err != nil {
		t.Fatal(err)
	}
	return a
}

func adicionaFrequencia(t *testing.T, s *Sistema, matricula, disciplina string, dias int, presente bool) *models.Frequencia {
	t.Helper()
	f, err := models.NovaFrequencia(0, matricula, disciplina, time.Now().AddDate(0, 0, dias), presente, "11111111111")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AdicionarFrequencia(f); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestDadosIniciaisCriamUmAdministrador(t *testing.T) {
	s := novoSistema(t)
	usuarios := s.ListarUsuarios()
	if len(usuarios) != 1 {
		t.Fatalf("sistema vazio deveria nascer com 1 usuário, veio %d", len(usuarios))
	}
	admin, ok := usuarios[0].(*models.Administrador)
	if !ok {
		t.Fatalf("usuário semeado deveria ser Administrador, veio %T", usuarios[0])
	}
	if admin.Email != AdminPadraoEmail || admin.Senha != AdminPadraoSenha {
		t.Fatal("credenciais do administrador padrão divergem")
	}

	// rodar de novo não duplica
	s.CriarDadosIniciais()
	if len(s.ListarUsuarios()) != 1 {
		t.Fatal("CriarDadosIniciais deveria ser no-op com usuários presentes")
	}
}

func TestAdicionarUsuarioRejeitaEmailDuplicadoIgnorandoCaixa(t *testing.T) {
	s := novoSistema(t)
	adicionaAluno(t, s, "Ana", "ana@ex.com", "11111111111", "2024001")

	antes := len(s.ListarUsuarios())
	outro := models.NovoAluno(0, "Outra Ana", "ANA@EX.COM", "99999999999", "x", "2024999", "Direito", 2)
	err := s.AdicionarUsuario(outro)
	if !errors.Is(err, apperr.ErrDuplicado) {
		t.Fatalf("esperava erro de email duplicado, veio %v", err)
	}
	var e *apperr.Erro
	if !errors.As(err, &e) || e.Codigo() != apperr.CodigoDuplicado {
		t.Fatalf("código inesperado para duplicado: %v", err)
	}
	if len(s.ListarUsuarios()) != antes {
		t.Fatal("coleção não pode mudar após falha de unicidade")
	}
}

func TestAdicionarUsuarioRejeitaCPFDuplicado(t *testing.T) {
	s := novoSistema(t)
	adicionaAluno(t, s, "Ana", "ana@ex.com", "11111111111", "2024001")

	outro := models.NovoProfessor(0, "Carlos", "carlos@ex.com", "11111111111", "x", "Exatas", "Doutor")
	if err := s.AdicionarUsuario(outro); err == nil {
		t.Fatal("esperava erro de CPF duplicado")
	}
}

func TestRemoverUsuarioInexistente(t *testing.T) {
	s := novoSistema(t)
	antes := len(s.ListarUsuarios())
	err := s.RemoverUsuario("cpf-inexistente")
	if !apperr.EhNaoEncontrado(err) {
		t.Fatalf("esperava não-encontrado, veio %v", err)
	}
	if len(s.ListarUsuarios()) != antes {
		t.Fatal("coleção não pode mudar após remoção falha")
	}
}

func TestBuscarUsuarioPorCPFEEmail(t *testing.T) {
	s := novoSistema(t)
	adicionaAluno(t, s, "Ana", "ana@ex.com", "11111111111", "2024001")

	if _, err := s.BuscarUsuario("11111111111"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.BuscarUsuarioPorEmail("ANA@ex.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.BuscarUsuario("000"); !apperr.EhNaoEncontrado(err) {
		t.Fatalf("esperava não-encontrado, veio %v", err)
	}
}

func TestListarUsuariosDevolveCopiaDefensiva(t *testing.T) {
	s := novoSistema(t)
	adicionaAluno(t, s, "Ana", "ana@ex.com", "11111111111", "2024001")

	lista := s.ListarUsuarios()
	lista[0] = nil
	lista = lista[:0]
	if len(s.ListarUsuarios()) != 2 || s.ListarUsuarios()[0] == nil {
		t.Fatal("mutação da lista devolvida vazou para o estado interno")
	}
}

func TestAutenticar(t *testing.T) {
	s := novoSistema(t)
	if _, ok := s.Autenticar(AdminPadraoEmail, AdminPadraoSenha); !ok {
		t.Fatal("administrador padrão deveria autenticar")
	}
	if _, ok := s.Autenticar(strings.ToUpper(AdminPadraoEmail), AdminPadraoSenha); !ok {
		t.Fatal("email com caixa diferente deveria autenticar")
	}
	if _, ok := s.Autenticar(AdminPadraoEmail, "senha-errada"); ok {
		t.Fatal("senha errada não pode autenticar")
	}
	if _, ok := s.Autenticar("ninguem@ex.com", "x"); ok {
		t.Fatal("email desconhecido não pode autenticar")
	}
}

func TestAdicionarFrequenciaAtribuiIDMonotonico(t *testing.T) {
	s := novoSistema(t)
	f1 := adicionaFrequencia(t, s, "2024001", "Cálculo I", -1, true)
	f2 := adicionaFrequencia(t, s, "2024001", "Cálculo I", 0, false)
	if f2.ID != f1.ID+1 {
		t.Fatalf("ids deveriam ser monotônicos: %d depois de %d", f2.ID, f1.ID)
	}
}

func TestAdicionarFrequenciaForaDaJanelaNaoAltera(t *testing.T) {
	s := novoSistema(t)
	antes := len(s.ListarFrequencias())

	futura := &models.Frequencia{
		AlunoMatricula: "2024001", Disciplina: "Cálculo I",
		Data: time.Now().AddDate(0, 0, 10), Presente: true, RegistradoPorCPF: "111",
	}
	err := s.AdicionarFrequencia(futura)
	if !apperr.EhValidacao(err) {
		t.Fatalf("esperava erro de validação, veio %v", err)
	}

	antiga := &models.Frequencia{
		AlunoMatricula: "2024001", Disciplina: "Cálculo I",
		Data: time.Now().AddDate(-3, 0, 0), Presente: true, RegistradoPorCPF: "111",
	}
	if err := s.AdicionarFrequencia(antiga); !apperr.EhValidacao(err) {
		t.Fatalf("esperava erro de validação, veio %v", err)
	}

	if len(s.ListarFrequencias()) != antes {
		t.Fatal("registros rejeitados não podem entrar na coleção")
	}
	if err := s.AdicionarFrequencia(nil); !apperr.EhValidacao(err) {
		t.Fatalf("frequência nula deveria ser inválida, veio %v", err)
	}
}

func TestRemoverFrequencia(t *testing.T) {
	s := novoSistema(t)
	f := adicionaFrequencia(t, s, "2024001", "Cálculo I", -1, true)
	if err := s.RemoverFrequencia(f.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoverFrequencia(f.ID); !apperr.EhNaoEncontrado(err) {
		t.Fatalf("esperava não-encontrado, veio %v", err)
	}
}

func TestFiltrosDeFrequencia(t *testing.T) {
	s := novoSistema(t)
	adicionaFrequencia(t, s, "2024001", "Cálculo I", -1, true)
	adicionaFrequencia(t, s, "2024002", "cálculo i", -1, false)
	adicionaFrequencia(t, s, "2024001", "Física", 0, true)

	if n := len(s.BuscarFrequenciasPorAluno("2024001")); n != 2 {
		t.Fatalf("esperava 2 por aluno, veio %d", n)
	}
	if n := len(s.BuscarFrequenciasPorDisciplina("CÁLCULO I")); n != 2 {
		t.Fatalf("filtro por disciplina deveria ignorar caixa, veio %d", n)
	}
	if n := len(s.BuscarFrequenciasPorRegistrador("11111111111")); n != 3 {
		t.Fatalf("esperava 3 por registrador, veio %d", n)
	}
	if fs := s.BuscarFrequenciasPorAluno("ninguem"); len(fs) != 0 {
		t.Fatalf("sem correspondência deveria vir lista vazia, veio %d", len(fs))
	}
}

func TestRelatorioAlunoComDoisRegistros(t *testing.T) {
	s := novoSistema(t)
	adicionaAluno(t, s, "Ana", "ana@ex.com", "22222222222", "2024001")
	prof := models.NovoProfessor(0, "Carlos", "carlos@ex.com", "11111111111", "x", "Exatas", "Doutor")
	if err := s.AdicionarUsuario(prof); err != nil {
		t.Fatal(err)
	}
	adicionaFrequencia(t, s, "2024001", "Cálculo I", -1, true)
	adicionaFrequencia(t, s, "2024001", "Cálculo I", 0, false)

	rel := s.RelatorioFrequenciaAluno("2024001")
	for _, trecho := range []string{
		"Total de aulas: 2",
		"Presenças: 1 (50.0%)",
		"Faltas: 1 (50.0%)",
	} {
		if !strings.Contains(rel, trecho) {
			t.Errorf("relatório deveria conter %q:\n%s", trecho, rel)
		}
	}
}

func TestRelatorioAlunoSemRegistros(t *testing.T) {
	s := novoSistema(t)
	rel := s.RelatorioFrequenciaAluno("2024001")
	if !strings.Contains(rel, "Nenhuma frequência registrada") {
		t.Fatalf("relatório vazio deveria avisar, veio:\n%s", rel)
	}
	if strings.Contains(rel, "%") {
		t.Fatal("relatório vazio não pode calcular percentual")
	}
}

func TestRelatorioGeralUsuarios(t *testing.T) {
	s := novoSistema(t)
	adicionaAluno(t, s, "Ana", "ana@ex.com", "22222222222", "2024001")
	rel := s.RelatorioGeralUsuarios()
	if !strings.Contains(rel, "Aluno") || !strings.Contains(rel, "ana@ex.com") {
		t.Fatalf("relatório geral incompleto:\n%s", rel)
	}
}

func TestEstadoSobreviveAoRecarregamento(t *testing.T) {
	dir := t.TempDir()
	arq := store.Novo(filepath.Join(dir, "usuarios.dat"), filepath.Join(dir, "frequencias.dat"), logging.Nop().Sugar)

	s1 := Novo(arq, true, logging.Nop().Sugar)
	adicionaAluno(t, s1, "Ana", "ana@ex.com", "22222222222", "2024001")
	f := adicionaFrequencia(t, s1, "2024001", "Cálculo I", -1, true)

	// nova sessão sobre os mesmos arquivos
	s2 := Novo(arq, true, logging.Nop().Sugar)
	if len(s2.ListarUsuarios()) != 2 {
		t.Fatalf("esperava 2 usuários após recarga, veio %d", len(s2.ListarUsuarios()))
	}
	if len(s2.ListarFrequencias()) != 1 {
		t.Fatalf("esperava 1 frequência após recarga, veio %d", len(s2.ListarFrequencias()))
	}
	// o contador continua de onde parou
	f2 := adicionaFrequencia(t, s2, "2024001", "Física", 0, true)
	if f2.ID <= f.ID {
		t.Fatalf("id após recarga deveria seguir o contador: %d <= %d", f2.ID, f.ID)
	}
}
