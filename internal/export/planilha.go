// Package export gera planilhas xlsx a partir das coleções em memória,
// para quem prefere abrir os dados fora do sistema.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/educsys/frequencia-academica/internal/models"
)

type Aba struct {
	Titulo    string
	Cabecalho []string
	Linhas    [][]string
}

type Planilha struct {
	File *excelize.File
}

// NovaPlanilha monta o arquivo com uma aba por Aba: cabeçalho em negrito
// com autofiltro e largura de coluna heurística pelas primeiras linhas.
func NovaPlanilha(abas []Aba) (*Planilha, error) {
	f := excelize.NewFile()

	negrito, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, a := range abas {
		nome := a.Titulo
		if i == 0 {
			if err := f.SetSheetName("Sheet1", nome); err != nil {
				return nil, fmt.Errorf("renomear aba: %w", err)
			}
		} else {
			if _, err := f.NewSheet(nome); err != nil {
				return nil, fmt.Errorf("criar aba: %w", err)
			}
		}
		for col, h := range a.Cabecalho {
			cel := fmt.Sprintf("%s1", nomeColuna(col+1))
			if err := f.SetCellStr(nome, cel, h); err != nil {
				return nil, fmt.Errorf("preencher célula %s: %w", cel, err)
			}
		}
		fim := nomeColuna(len(a.Cabecalho)) + "1"
		_ = f.SetCellStyle(nome, "A1", fim, negrito)
		_ = f.AutoFilter(nome, "A1:"+fim, nil)

		for l, linha := range a.Linhas {
			for c, valor := range linha {
				cel := fmt.Sprintf("%s%d", nomeColuna(c+1), l+2)
				if err := f.SetCellStr(nome, cel, valor); err != nil {
					return nil, fmt.Errorf("preencher célula %s: %w", cel, err)
				}
			}
		}
		// largura pela maior célula entre o cabeçalho e as primeiras linhas
		for c := 1; c <= len(a.Cabecalho); c++ {
			maior := len(a.Cabecalho[c-1])
			limite := len(a.Linhas)
			if limite > 50 {
				limite = 50
			}
			for l := 0; l < limite; l++ {
				if tam := len(a.Linhas[l][c-1]); tam > maior {
					maior = tam
				}
			}
			w := float64(maior) * 0.9
			if w < 12 {
				w = 12
			}
			if w > 40 {
				w = 40
			}
			_ = f.SetColWidth(nome, nomeColuna(c), nomeColuna(c), w)
		}
	}
	return &Planilha{File: f}, nil
}

// SalvarTemp grava no diretório temporário com data no nome e devolve o caminho.
func (p *Planilha) SalvarTemp(prefixo string) (string, error) {
	nome := fmt.Sprintf("%s_%s.xlsx", prefixo, time.Now().Format("2006-01-02"))
	caminho := filepath.Join(os.TempDir(), nome)
	return caminho, p.File.SaveAs(caminho)
}

// PlanilhaSistema monta as abas "Usuarios" e "Frequencias" com o conteúdo
// corrente das coleções. A senha não entra na planilha.
func PlanilhaSistema(usuarios []models.Usuario, frequencias []*models.Frequencia) (*Planilha, error) {
	abaUsuarios := Aba{
		Titulo:    "Usuarios",
		Cabecalho: []string{"ID", "Tipo", "Nome", "Email", "CPF", "Ativo"},
	}
	for _, u := range usuarios {
		d := u.Dados()
		ativo := "sim"
		if !d.Ativo {
			ativo = "não"
		}
		abaUsuarios.Linhas = append(abaUsuarios.Linhas, []string{
			strconv.FormatInt(d.ID, 10), string(u.Perfil()), d.Nome, d.Email, d.CPF, ativo,
		})
	}

	ordenadas := make([]*models.Frequencia, len(frequencias))
	copy(ordenadas, frequencias)
	models.OrdenarParaRelatorio(ordenadas)

	abaFrequencias := Aba{
		Titulo:    "Frequencias",
		Cabecalho: []string{"ID", "Matrícula", "Disciplina", "Data", "Dia", "Status", "Registrado por"},
	}
	for _, f := range ordenadas {
		abaFrequencias.Linhas = append(abaFrequencias.Linhas, []string{
			strconv.FormatInt(f.ID, 10), f.AlunoMatricula, f.Disciplina,
			f.DataFormatada(), f.DiaDaSemana(), f.Status(), f.RegistradoPorCPF,
		})
	}

	return NovaPlanilha([]Aba{abaUsuarios, abaFrequencias})
}

func nomeColuna(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}
