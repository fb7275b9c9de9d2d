// Package service contém o Sistema: o único mutador das coleções de
// usuários e frequências. Toda tela fala com ele; a persistência é
// espelhada via o adaptador injetado na construção.
package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/educsys/frequencia-academica/internal/apperr"
	"github.com/educsys/frequencia-academica/internal/metrics"
	"github.com/educsys/frequencia-academica/internal/models"
	"github.com/educsys/frequencia-academica/internal/observability"
)

// Credenciais do administrador criado no primeiro uso.
const (
	AdminPadraoNome  = "Administrador"
	AdminPadraoEmail = "admin@sistema.edu.br"
	AdminPadraoCPF   = "00000000000"
	AdminPadraoSenha = "admin123"
)

// Persistencia é o contrato do snapshot binário. Carregar nunca falha:
// arquivo ausente ou corrompido degrada para coleção vazia no adaptador.
type Persistencia interface {
	SalvarUsuarios([]models.Usuario) error
	CarregarUsuarios() []models.Usuario
	SalvarFrequencias([]*models.Frequencia) error
	CarregarFrequencias() []*models.Frequencia
}

type Sistema struct {
	log   *zap.SugaredLogger
	store Persistencia

	// grava snapshot a cada mutação; desligado em importações de teste
	autosave bool

	usuarios    []models.Usuario
	frequencias []*models.Frequencia

	// contador monotônico de ids de frequência; substitui o esquema
	// "relógio como id" do sistema antigo, que colidia em chamadas rápidas
	proximoID int64
}

// Novo carrega os snapshots, posiciona o contador de ids e garante o
// administrador padrão num sistema vazio. Deve ser construído uma vez
// por sessão.
func Novo(store Persistencia, autosave bool, log *zap.SugaredLogger) *Sistema {
	s := &Sistema{
		log:       log,
		store:     store,
		autosave:  autosave,
		proximoID: 1,
	}
	s.usuarios = store.CarregarUsuarios()
	s.frequencias = store.CarregarFrequencias()
	for _, f := range s.frequencias {
		if f.ID >= s.proximoID {
			s.proximoID = f.ID + 1
		}
	}
	s.CriarDadosIniciais()
	return s
}

// CriarDadosIniciais cria exatamente um Administrador com credenciais
// fixas quando o sistema está vazio; com qualquer usuário presente vira
// no-op. Roda em toda construção, de forma idempotente.
func (s *Sistema) CriarDadosIniciais() {
	if len(s.usuarios) > 0 {
		return
	}
	admin := models.NovoAdministrador(1, AdminPadraoNome, AdminPadraoEmail, AdminPadraoCPF, AdminPadraoSenha, "TOTAL")
	if err := s.AdicionarUsuario(admin); err != nil {
		s.log.Errorw("falha ao criar dados iniciais", "err", err)
		observability.CaptureErr(err)
		return
	}
	s.log.Infow("administrador padrão criado", "email", AdminPadraoEmail)
}

// ===== Usuários =====

// AdicionarUsuario valida unicidade de email (sem diferenciar maiúsculas)
// e de CPF antes de anexar. Com autosave ligado, espelha o snapshot; a
// falha de gravação é logada e reportada, nunca derruba a operação.
func (s *Sistema) AdicionarUsuario(u models.Usuario) error {
	if u == nil {
		return apperr.DadosInvalidos("usuario", "usuário inválido (nulo)")
	}
	d := u.Dados()
	for _, existente := range s.usuarios {
		if existente.Dados().EmailIgual(d.Email) {
			return apperr.EmailJaCadastrado(d.Email)
		}
		if existente.Dados().CPF == d.CPF {
			return apperr.CPFJaCadastrado(d.CPF)
		}
	}
	if d.ID == 0 {
		d.ID = s.proximoIDUsuario()
	}
	s.usuarios = append(s.usuarios, u)
	metrics.UsuariosCriados.Inc()
	s.salvarUsuarios()
	return nil
}

// RemoverUsuario remove pelo CPF.
func (s *Sistema) RemoverUsuario(cpf string) error {
	for i, u := range s.usuarios {
		if u.Dados().CPF == cpf {
			s.usuarios = append(s.usuarios[:i], s.usuarios[i+1:]...)
			s.salvarUsuarios()
			return nil
		}
	}
	return apperr.UsuarioNaoEncontrado(cpf)
}

func (s *Sistema) BuscarUsuario(cpf string) (models.Usuario, error) {
	for _, u := range s.usuarios {
		if u.Dados().CPF == cpf {
			return u, nil
		}
	}
	return nil, apperr.UsuarioNaoEncontrado(cpf)
}

func (s *Sistema) BuscarUsuarioPorEmail(email string) (models.Usuario, error) {
	for _, u := range s.usuarios {
		if u.Dados().EmailIgual(email) {
			return u, nil
		}
	}
	return nil, apperr.UsuarioNaoEncontrado(email)
}

// ListarUsuarios devolve uma cópia defensiva: mexer no slice devolvido
// não altera o estado interno.
func (s *Sistema) ListarUsuarios() []models.Usuario {
	out := make([]models.Usuario, len(s.usuarios))
	copy(out, s.usuarios)
	return out
}

// Autenticar compara email (sem diferenciar maiúsculas) e senha exata.
// Ausência de correspondência não é erro: devolve ok=false.
func (s *Sistema) Autenticar(email, senha string) (models.Usuario, bool) {
	for _, u := range s.usuarios {
		d := u.Dados()
		if d.EmailIgual(email) && d.Senha == senha {
			return u, true
		}
	}
	return nil, false
}

// ===== Frequências =====

// AdicionarFrequencia valida o registro, atribui o id pelo contador e
// anexa. Matrícula sem aluno correspondente gera só um aviso no log.
func (s *Sistema) AdicionarFrequencia(f *models.Frequencia) error {
	if f == nil {
		return apperr.DadosInvalidos("frequencia", "frequência inválida (nula)")
	}
	if err := f.Validar(); err != nil {
		return err
	}
	f.ID = s.proximoID
	s.proximoID++

	if !s.existeAluno(f.AlunoMatricula) {
		s.log.Warnw("frequência para matrícula sem aluno cadastrado",
			"matricula", f.AlunoMatricula, "disciplina", f.Disciplina)
	}
	s.frequencias = append(s.frequencias, f)
	metrics.FrequenciasRegistradas.Inc()
	s.salvarFrequencias()
	return nil
}

// RemoverFrequencia remove pelo id.
func (s *Sistema) RemoverFrequencia(id int64) error {
	for i, f := range s.frequencias {
		if f.ID == id {
			s.frequencias = append(s.frequencias[:i], s.frequencias[i+1:]...)
			s.salvarFrequencias()
			return nil
		}
	}
	return apperr.FrequenciaNaoEncontrada(id)
}

// BuscarFrequenciasPorAluno filtra por matrícula; lista vazia quando nada casa.
func (s *Sistema) BuscarFrequenciasPorAluno(matricula string) []*models.Frequencia {
	var out []*models.Frequencia
	for _, f := range s.frequencias {
		if f.AlunoMatricula == matricula {
			out = append(out, f)
		}
	}
	return out
}

// BuscarFrequenciasPorDisciplina filtra sem diferenciar maiúsculas.
func (s *Sistema) BuscarFrequenciasPorDisciplina(disciplina string) []*models.Frequencia {
	var out []*models.Frequencia
	for _, f := range s.frequencias {
		if strings.EqualFold(f.Disciplina, disciplina) {
			out = append(out, f)
		}
	}
	return out
}

// BuscarFrequenciasPorRegistrador filtra pelo CPF de quem registrou.
func (s *Sistema) BuscarFrequenciasPorRegistrador(cpf string) []*models.Frequencia {
	var out []*models.Frequencia
	for _, f := range s.frequencias {
		if f.RegistradoPorCPF == cpf {
			out = append(out, f)
		}
	}
	return out
}

// ListarFrequencias devolve uma cópia defensiva da coleção.
func (s *Sistema) ListarFrequencias() []*models.Frequencia {
	out := make([]*models.Frequencia, len(s.frequencias))
	copy(out, s.frequencias)
	return out
}

// ===== Persistência =====

// Salvar grava os dois snapshots; usado na saída da sessão.
func (s *Sistema) Salvar() error {
	if err := s.store.SalvarUsuarios(s.usuarios); err != nil {
		return err
	}
	return s.store.SalvarFrequencias(s.frequencias)
}

func (s *Sistema) salvarUsuarios() {
	if !s.autosave {
		return
	}
	if err := s.store.SalvarUsuarios(s.usuarios); err != nil {
		s.log.Warnw("autosave de usuários falhou", "err", err)
		observability.CaptureErr(err)
	}
}

func (s *Sistema) salvarFrequencias() {
	if !s.autosave {
		return
	}
	if err := s.store.SalvarFrequencias(s.frequencias); err != nil {
		s.log.Warnw("autosave de frequências falhou", "err", err)
		observability.CaptureErr(err)
	}
}

// ===== Auxiliares =====

func (s *Sistema) existeAluno(matricula string) bool {
	for _, u := range s.usuarios {
		if a, ok := u.(*models.Aluno); ok && a.Matricula == matricula {
			return true
		}
	}
	return false
}

func (s *Sistema) proximoIDUsuario() int64 {
	var maior int64
	for _, u := range s.usuarios {
		if id := u.Dados().ID; id > maior {
			maior = id
		}
	}
	return maior + 1
}
