package service

import (
	"github.com/educsys/frequencia-academica/internal/csvio"
)

// ImportarDados lê o arquivo de intercâmbio e insere as entidades pelas
// operações normais do sistema: unicidade e validação continuam valendo,
// e cada linha rejeitada vira aviso no log em vez de abortar o restante.
// Devolve quantos usuários e frequências entraram de fato.
func (s *Sistema) ImportarDados(caminho string) (int, int, error) {
	usuarios, frequencias, err := csvio.Importar(caminho, s.log)
	if err != nil {
		return 0, 0, err
	}

	importadosU := 0
	for _, u := range usuarios {
		// o id vem zerado (ou do arquivo exportado); deixa o sistema decidir
		u.Dados().ID = 0
		if err := s.AdicionarUsuario(u); err != nil {
			s.log.Warnw("usuário do CSV rejeitado", "email", u.Dados().Email, "err", err)
			continue
		}
		importadosU++
	}

	importadosF := 0
	for _, f := range frequencias {
		if err := s.AdicionarFrequencia(f); err != nil {
			s.log.Warnw("frequência do CSV rejeitada", "matricula", f.AlunoMatricula, "err", err)
			continue
		}
		importadosF++
	}
	s.log.Infow("importação concluída", "usuarios", importadosU, "frequencias", importadosF)
	return importadosU, importadosF, nil
}

// ExportarCSV grava os dois arquivos delimitados a partir das coleções
// em memória. A senha nunca sai no arquivo de usuários.
func (s *Sistema) ExportarCSV(caminhoUsuarios, caminhoFrequencias string) error {
	if err := csvio.ExportarUsuarios(caminhoUsuarios, s.usuarios); err != nil {
		return err
	}
	return csvio.ExportarFrequencias(caminhoFrequencias, s.frequencias)
}

// GerarCSVExemplo grava o arquivo de exemplo usado para demonstrar a importação.
func (s *Sistema) GerarCSVExemplo(caminho string) error {
	return csvio.GerarExemplo(caminho)
}
