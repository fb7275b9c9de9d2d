package models

import (
	"fmt"
	"strings"
)

// Perfil identifica a variante concreta de usuário. É também a etiqueta
// usada nas linhas do CSV de intercâmbio.
type Perfil string

const (
	PerfilAluno         Perfil = "Aluno"
	PerfilProfessor     Perfil = "Professor"
	PerfilCoordenador   Perfil = "Coordenador"
	PerfilAdministrador Perfil = "Administrador"
)

// Usuario é o conjunto fechado de variantes de usuário do sistema.
// Só as quatro variantes deste pacote o implementam.
type Usuario interface {
	Dados() *DadosUsuario
	Perfil() Perfil
	Permissoes() []string
	PodeEditarFrequencia() bool
	PodeGerenciarUsuarios() bool
	RelatorioPersonalizado() string

	variante() // fecha o conjunto
}

// DadosUsuario é a parte comum a todas as variantes.
type DadosUsuario struct {
	ID    int64
	Nome  string
	Email string
	CPF   string
	Senha string
	Ativo bool
}

func (d *DadosUsuario) Dados() *DadosUsuario { return d }

// EmailIgual compara emails sem diferenciar maiúsculas/minúsculas.
func (d *DadosUsuario) EmailIgual(email string) bool {
	return strings.EqualFold(d.Email, email)
}

// DescricaoCompleta monta a linha de identificação exibida nas telas.
func DescricaoCompleta(u Usuario) string {
	d := u.Dados()
	return fmt.Sprintf("%s (%s) - %s", d.Nome, u.Perfil(), d.Email)
}

func novoDados(id int64, nome, email, cpf, senha string) DadosUsuario {
	return DadosUsuario{ID: id, Nome: nome, Email: email, CPF: cpf, Senha: senha, Ativo: true}
}

// ===== Aluno =====

type Aluno struct {
	DadosUsuario
	Matricula string
	Curso     string
	Semestre  int
}

func NovoAluno(id int64, nome, email, cpf, senha, matricula, curso string, semestre int) *Aluno {
	return &Aluno{
		DadosUsuario: novoDados(id, nome, email, cpf, senha),
		Matricula:    matricula,
		Curso:        curso,
		Semestre:     semestre,
	}
}

func (a *Aluno) Perfil() Perfil { return PerfilAluno }

func (a *Aluno) Permissoes() []string {
	return []string{"VISUALIZAR_FREQUENCIA", "GERAR_RELATORIO"}
}

func (a *Aluno) PodeEditarFrequencia() bool  { return false }
func (a *Aluno) PodeGerenciarUsuarios() bool { return false }

func (a *Aluno) RelatorioPersonalizado() string {
	return fmt.Sprintf("Relatório de Presença do Aluno %s (Mat: %s)", a.Nome, a.Matricula)
}

func (a *Aluno) variante() {}

// ===== Professor =====

type Professor struct {
	DadosUsuario
	Area        string
	Titulacao   string
	Disciplinas []string
}

func NovoProfessor(id int64, nome, email, cpf, senha, area, titulacao string) *Professor {
	return &Professor{
		DadosUsuario: novoDados(id, nome, email, cpf, senha),
		Area:         area,
		Titulacao:    titulacao,
	}
}

func (p *Professor) Perfil() Perfil { return PerfilProfessor }

func (p *Professor) Permissoes() []string {
	return []string{"VALIDAR_FREQUENCIA", "VISUALIZAR_ALUNOS"}
}

func (p *Professor) PodeEditarFrequencia() bool  { return true }
func (p *Professor) PodeGerenciarUsuarios() bool { return false }

func (p *Professor) RelatorioPersonalizado() string {
	return fmt.Sprintf("Relatório de Aulas do Professor %s (Área: %s)", p.Nome, p.Area)
}

func (p *Professor) variante() {}

// ===== Coordenador =====

type Coordenador struct {
	DadosUsuario
	Curso                  string
	DisciplinasGerenciadas []string
}

func NovoCoordenador(id int64, nome, email, cpf, senha, curso string) *Coordenador {
	return &Coordenador{
		DadosUsuario: novoDados(id, nome, email, cpf, senha),
		Curso:        curso,
	}
}

func (c *Coordenador) Perfil() Perfil { return PerfilCoordenador }

func (c *Coordenador) Permissoes() []string {
	return []string{"GERENCIAR_DISCIPLINAS", "GERAR_RELATORIO_DISCIPLINA"}
}

func (c *Coordenador) PodeEditarFrequencia() bool  { return true }
func (c *Coordenador) PodeGerenciarUsuarios() bool { return true }

func (c *Coordenador) RelatorioPersonalizado() string {
	return fmt.Sprintf("Relatório de Curso %s - Coordenador %s", c.Curso, c.Nome)
}

// GerenciaDisciplina informa se a disciplina está sob gestão do coordenador.
func (c *Coordenador) GerenciaDisciplina(disciplina string) bool {
	for _, d := range c.DisciplinasGerenciadas {
		if strings.EqualFold(d, disciplina) {
			return true
		}
	}
	return false
}

func (c *Coordenador) variante() {}

// ===== Administrador =====

type Administrador struct {
	DadosUsuario
	NivelAcesso string
}

func NovoAdministrador(id int64, nome, email, cpf, senha, nivelAcesso string) *Administrador {
	return &Administrador{
		DadosUsuario: novoDados(id, nome, email, cpf, senha),
		NivelAcesso:  nivelAcesso,
	}
}

func (a *Administrador) Perfil() Perfil { return PerfilAdministrador }

func (a *Administrador) Permissoes() []string {
	return []string{"CRIAR_USUARIO", "EXCLUIR_USUARIO", "VER_TODOS_RELATORIOS"}
}

func (a *Administrador) PodeEditarFrequencia() bool  { return true }
func (a *Administrador) PodeGerenciarUsuarios() bool { return true }

func (a *Administrador) RelatorioPersonalizado() string {
	return fmt.Sprintf("Relatório Geral de Usuários (Nível de Acesso: %s)", a.NivelAcesso)
}

func (a *Administrador) variante() {}
