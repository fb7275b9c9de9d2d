package app

import (
	"github.com/educsys/frequencia-academica/internal/models"
)

// Opcao é um item do menu principal; Exec devolve false para encerrar a sessão.
type Opcao struct {
	Rotulo string
	Exec   func(s *Sessao) bool
}

// MenuParaUsuario monta o menu de acordo com as capacidades da variante:
// as telas de gestão só aparecem para quem passa nos predicados.
func MenuParaUsuario(u models.Usuario) []Opcao {
	opcoes := []Opcao{
		{"Meu resumo", (*Sessao).telaResumo},
		{"Relatório por aluno", (*Sessao).telaRelatorioAluno},
		{"Relatório por disciplina", (*Sessao).telaRelatorioDisciplina},
	}
	if u.PodeEditarFrequencia() {
		opcoes = append(opcoes,
			Opcao{"Registrar frequência", (*Sessao).telaRegistrarFrequencia},
			Opcao{"Remover frequência", (*Sessao).telaRemoverFrequencia},
		)
	}
	if u.PodeGerenciarUsuarios() {
		opcoes = append(opcoes,
			Opcao{"Listar usuários", (*Sessao).telaListarUsuarios},
			Opcao{"Cadastrar usuário", (*Sessao).telaCadastrarUsuario},
			Opcao{"Remover usuário", (*Sessao).telaRemoverUsuario},
			Opcao{"Relatório geral de usuários", (*Sessao).telaRelatorioGeral},
			Opcao{"Exportar CSV", (*Sessao).telaExportarCSV},
			Opcao{"Importar CSV", (*Sessao).telaImportarCSV},
			Opcao{"Gerar CSV de exemplo", (*Sessao).telaGerarExemplo},
			Opcao{"Exportar planilha xlsx", (*Sessao).telaExportarPlanilha},
		)
	}
	opcoes = append(opcoes, Opcao{"Salvar e sair", (*Sessao).telaSair})
	return opcoes
}
