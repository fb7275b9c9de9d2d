// Package apperr define o erro estruturado de negócio do sistema:
// entidade, identificador, motivo e instante de criação, com fábricas
// para os casos comuns e predicados de classificação.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Tipos-base para verificação com errors.Is.
var (
	ErrNaoEncontrado = errors.New("não encontrado")
	ErrDuplicado     = errors.New("já cadastrado")
	ErrValidacao     = errors.New("dados inválidos")
	ErrPersistencia  = errors.New("falha de persistência")
	ErrAcessoNegado  = errors.New("acesso negado")
)

// Códigos numéricos por categoria, para tratamento grosseiro pelo chamador.
const (
	CodigoNaoEncontrado = 100
	CodigoDuplicado     = 200
	CodigoValidacao     = 300
	CodigoPersistencia  = 400
	CodigoAcessoNegado  = 500
	CodigoDesconhecido  = 900
)

// Erro carrega o contexto de uma falha de negócio ou de persistência.
type Erro struct {
	Entidade      string // "Usuario", "Frequencia", "Validacao", "Persistencia", "Seguranca"
	Identificador string
	Motivo        string
	Quando        time.Time
	Tipo          error // tipo-base, para errors.Is
	Causa         error // erro subjacente (opcional)
}

func (e *Erro) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Entidade, e.Identificador, e.Motivo)
}

// Detalhes retorna a mensagem em formato multilinha, pronta para exibição.
func (e *Erro) Detalhes() string {
	s := fmt.Sprintf("Entidade: %s\nIdentificador: %s\nMotivo: %s\nQuando: %s",
		e.Entidade, e.Identificador, e.Motivo, e.Quando.Format("02/01/2006 15:04:05"))
	if e.Causa != nil {
		s += "\nCausa: " + e.Causa.Error()
	}
	return s
}

func (e *Erro) Unwrap() error {
	if e.Causa != nil {
		return e.Causa
	}
	return e.Tipo
}

func (e *Erro) Is(target error) bool {
	if e.Tipo != nil && errors.Is(e.Tipo, target) {
		return true
	}
	return e.Causa != nil && errors.Is(e.Causa, target)
}

// Codigo agrupa o erro em uma categoria numérica.
func (e *Erro) Codigo() int {
	switch {
	case errors.Is(e.Tipo, ErrNaoEncontrado):
		return CodigoNaoEncontrado
	case errors.Is(e.Tipo, ErrDuplicado):
		return CodigoDuplicado
	case errors.Is(e.Tipo, ErrValidacao):
		return CodigoValidacao
	case errors.Is(e.Tipo, ErrPersistencia):
		return CodigoPersistencia
	case errors.Is(e.Tipo, ErrAcessoNegado):
		return CodigoAcessoNegado
	default:
		return CodigoDesconhecido
	}
}

func novo(entidade, id, motivo string, tipo error) *Erro {
	return &Erro{
		Entidade:      entidade,
		Identificador: id,
		Motivo:        motivo,
		Quando:        time.Now(),
		Tipo:          tipo,
	}
}

// ===== Fábricas =====

func UsuarioNaoEncontrado(cpf string) *Erro {
	return novo("Usuario", cpf, "usuário não encontrado", ErrNaoEncontrado)
}

func EmailJaCadastrado(email string) *Erro {
	return novo("Usuario", email, "email já cadastrado", ErrDuplicado)
}

func CPFJaCadastrado(cpf string) *Erro {
	return novo("Usuario", cpf, "CPF já cadastrado", ErrDuplicado)
}

func FrequenciaNaoEncontrada(id int64) *Erro {
	return novo("Frequencia", fmt.Sprintf("%d", id), "frequência não encontrada", ErrNaoEncontrado)
}

func DadosInvalidos(campo, motivo string) *Erro {
	return novo("Validacao", campo, motivo, ErrValidacao)
}

func AcessoNegado(cpf, operacao string) *Erro {
	return novo("Seguranca", cpf, "acesso negado: "+operacao, ErrAcessoNegado)
}

func ArquivoNaoEncontrado(caminho string) *Erro {
	return novo("Persistencia", caminho, "arquivo não encontrado", ErrNaoEncontrado)
}

// FalhaPersistencia embrulha um erro de E/S ou de (de)serialização.
func FalhaPersistencia(operacao string, causa error) *Erro {
	e := novo("Persistencia", operacao, "falha de persistência", ErrPersistencia)
	e.Causa = causa
	return e
}

// ===== Predicados =====

func EhNaoEncontrado(err error) bool {
	return errors.Is(err, ErrNaoEncontrado)
}

func EhValidacao(err error) bool {
	return errors.Is(err, ErrValidacao)
}

// EhCritico indica falhas de usuário, persistência ou segurança que merecem
// atenção do operador (e não apenas do usuário final).
func EhCritico(err error) bool {
	var e *Erro
	if !errors.As(err, &e) {
		return false
	}
	switch e.Entidade {
	case "Usuario", "Persistencia", "Seguranca":
		return true
	}
	return false
}
