// Package csvio lê e grava o formato de intercâmbio do sistema:
// texto delimitado por ponto-e-vírgula, uma entidade por linha, linhas
// etiquetadas pelo tipo no primeiro campo. É o caminho de importação e
// exportação em massa, separado do snapshot binário.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/educsys/frequencia-academica/internal/apperr"
	"github.com/educsys/frequencia-academica/internal/models"
)

// SenhaPadrao é atribuída a todo usuário importado: credenciais nunca
// fazem parte do formato de intercâmbio.
const SenhaPadrao = "senha123"

const delimitador = ';'

// GerarExemplo grava um dados.csv fixo para testar a importação. As datas
// das frequências são relativas a hoje para caírem na janela de validação.
func GerarExemplo(caminho string) error {
	hoje := time.Now()
	var sb strings.Builder
	sb.WriteString("Tipo;Nome;Email;CPF;Matricula;Curso;Semestre\n")
	sb.WriteString("Aluno;Pedro Silva;pedro@ex.com;11111111111;20231001;Medicina;2\n")
	sb.WriteString("Professor;Maria Souza;maria@ex.com;22222222222;Saude;Mestre\n")
	sb.WriteString("Administrador;Ana Admin;anaadmin@ex.com;33333333333;TOTAL\n")
	sb.WriteString("Coordenador;Lucas Costa;lucas@ex.com;44444444444;Engenharia\n")
	sb.WriteString("\n")
	sb.WriteString("Frequencia;ID;AlunoMatricula;Disciplina;Data;Presente;RegistradoPor\n")
	fmt.Fprintf(&sb, "Frequencia;1;20231001;Anatomia;%s;true;22222222222\n", hoje.AddDate(0, 0, -7).Format(models.FormatoData))
	fmt.Fprintf(&sb, "Frequencia;2;20231001;Fisiologia;%s;false;22222222222\n", hoje.AddDate(0, 0, -6).Format(models.FormatoData))
	fmt.Fprintf(&sb, "Frequencia;3;20231002;Anatomia;%s;true;22222222222\n", hoje.AddDate(0, 0, -7).Format(models.FormatoData))

	if err := os.WriteFile(caminho, []byte(sb.String()), 0o644); err != nil {
		return apperr.FalhaPersistencia("gerar CSV de exemplo", err)
	}
	return nil
}

// Importar lê o arquivo de intercâmbio e constrói as entidades. Linhas em
// branco são ignoradas; linhas malformadas geram aviso no log e são
// puladas, nunca interrompem a importação. Aceita tanto as linhas do
// arquivo de exemplo quanto as geradas pelos exportadores.
func Importar(caminho string, log *zap.SugaredLogger) ([]models.Usuario, []*models.Frequencia, error) {
	arq, err := os.Open(caminho)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperr.ArquivoNaoEncontrado(caminho)
		}
		return nil, nil, apperr.FalhaPersistencia("abrir CSV", err)
	}
	defer func() { _ = arq.Close() }()

	r := csv.NewReader(arq)
	r.Comma = delimitador
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	linhas, err := r.ReadAll()
	if err != nil {
		return nil, nil, apperr.FalhaPersistencia("ler CSV", err)
	}

	var usuarios []models.Usuario
	var frequencias []*models.Frequencia
	for n, campos := range linhas {
		if vazia(campos) {
			continue
		}
		tipo := strings.TrimSpace(campos[0])
		switch models.Perfil(tipo) {
		case models.PerfilAluno, models.PerfilProfessor, models.PerfilCoordenador, models.PerfilAdministrador:
			u, err := linhaParaUsuario(tipo, campos)
			if err != nil {
				log.Warnw("linha de usuário inválida no CSV, pulando", "linha", n+1, "err", err)
				continue
			}
			usuarios = append(usuarios, u)
		default:
			if tipo == "Frequencia" {
				campos = campos[1:]
			} else if !pareceFrequencia(campos) {
				// cabeçalho de usuários ou lixo: ignora
				continue
			}
			if ehCabecalhoFrequencia(campos) {
				continue
			}
			f, err := linhaParaFrequencia(campos)
			if err != nil {
				log.Warnw("linha de frequência inválida no CSV, pulando", "linha", n+1, "err", err)
				continue
			}
			frequencias = append(frequencias, f)
		}
	}
	return usuarios, frequencias, nil
}

// linhaParaUsuario monta a variante a partir dos campos posicionais.
// Suporta o leiaute de intercâmbio (sem ID) e o exportado (com ID após o
// tipo). A senha é sempre a padrão.
func linhaParaUsuario(tipo string, campos []string) (models.Usuario, error) {
	// leiaute exportado: Tipo;ID;Nome;Email;CPF;Extra...
	var id int64
	if len(campos) > 1 {
		if v, err := strconv.ParseInt(strings.TrimSpace(campos[1]), 10, 64); err == nil {
			id = v
			campos = append(campos[:1], campos[2:]...)
		}
	}
	if len(campos) < 5 {
		return nil, fmt.Errorf("esperava ao menos 5 campos, veio %d", len(campos))
	}
	nome := strings.TrimSpace(campos[1])
	email := strings.TrimSpace(campos[2])
	cpf := strings.TrimSpace(campos[3])

	switch models.Perfil(tipo) {
	case models.PerfilAluno:
		if len(campos) != 7 {
			return nil, fmt.Errorf("Aluno exige 7 campos, veio %d", len(campos))
		}
		semestre, err := strconv.Atoi(strings.TrimSpace(campos[6]))
		if err != nil {
			return nil, fmt.Errorf("semestre não numérico: %q", campos[6])
		}
		return models.NovoAluno(id, nome, email, cpf, SenhaPadrao,
			strings.TrimSpace(campos[4]), strings.TrimSpace(campos[5]), semestre), nil
	case models.PerfilProfessor:
		if len(campos) != 6 {
			return nil, fmt.Errorf("Professor exige 6 campos, veio %d", len(campos))
		}
		return models.NovoProfessor(id, nome, email, cpf, SenhaPadrao,
			strings.TrimSpace(campos[4]), strings.TrimSpace(campos[5])), nil
	case models.PerfilAdministrador:
		if len(campos) != 5 {
			return nil, fmt.Errorf("Administrador exige 5 campos, veio %d", len(campos))
		}
		return models.NovoAdministrador(id, nome, email, cpf, SenhaPadrao,
			strings.TrimSpace(campos[4])), nil
	case models.PerfilCoordenador:
		if len(campos) != 5 {
			return nil, fmt.Errorf("Coordenador exige 5 campos, veio %d", len(campos))
		}
		return models.NovoCoordenador(id, nome, email, cpf, SenhaPadrao,
			strings.TrimSpace(campos[4])), nil
	}
	return nil, fmt.Errorf("tipo desconhecido: %s", tipo)
}

// linhaParaFrequencia espera: id;matricula;disciplina;data;presente;registradoPor.
func linhaParaFrequencia(campos []string) (*models.Frequencia, error) {
	if len(campos) != 6 {
		return nil, fmt.Errorf("frequência exige 6 campos, veio %d", len(campos))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(campos[0]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("id não numérico: %q", campos[0])
	}
	data, err := time.Parse(models.FormatoData, strings.TrimSpace(campos[3]))
	if err != nil {
		return nil, fmt.Errorf("data inválida: %q", campos[3])
	}
	presente, err := strconv.ParseBool(strings.TrimSpace(campos[4]))
	if err != nil {
		return nil, fmt.Errorf("presente inválido: %q", campos[4])
	}
	return models.NovaFrequencia(id, campos[1], campos[2], data, presente, campos[5])
}

// ExportarUsuarios grava usuarios.csv. A senha nunca é exportada.
func ExportarUsuarios(caminho string, usuarios []models.Usuario) error {
	arq, err := os.Create(caminho)
	if err != nil {
		return apperr.FalhaPersistencia("criar CSV de usuários", err)
	}
	defer func() { _ = arq.Close() }()

	w := csv.NewWriter(arq)
	w.Comma = delimitador
	_ = w.Write([]string{"Tipo", "ID", "Nome", "Email", "CPF", "Extra01", "Extra02", "Extra03"})
	for _, u := range usuarios {
		d := u.Dados()
		linha := []string{string(u.Perfil()), strconv.FormatInt(d.ID, 10), d.Nome, d.Email, d.CPF}
		switch v := u.(type) {
		case *models.Aluno:
			linha = append(linha, v.Matricula, v.Curso, strconv.Itoa(v.Semestre))
		case *models.Professor:
			linha = append(linha, v.Area, v.Titulacao)
		case *models.Coordenador:
			linha = append(linha, v.Curso)
		case *models.Administrador:
			linha = append(linha, v.NivelAcesso)
		}
		_ = w.Write(linha)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperr.FalhaPersistencia("gravar CSV de usuários", err)
	}
	return nil
}

// ExportarFrequencias grava frequencias.csv.
func ExportarFrequencias(caminho string, fs []*models.Frequencia) error {
	arq, err := os.Create(caminho)
	if err != nil {
		return apperr.FalhaPersistencia("criar CSV de frequências", err)
	}
	defer func() { _ = arq.Close() }()

	w := csv.NewWriter(arq)
	w.Comma = delimitador
	_ = w.Write([]string{"ID", "AlunoMatricula", "Disciplina", "Data", "Presente", "RegistradoPor"})
	for _, f := range fs {
		_ = w.Write([]string{
			strconv.FormatInt(f.ID, 10),
			f.AlunoMatricula,
			f.Disciplina,
			f.DataFormatada(),
			strconv.FormatBool(f.Presente),
			f.RegistradoPorCPF,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperr.FalhaPersistencia("gravar CSV de frequências", err)
	}
	return nil
}

func vazia(campos []string) bool {
	for _, c := range campos {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// pareceFrequencia reconhece as linhas exportadas sem etiqueta: seis
// campos com id numérico na frente.
func pareceFrequencia(campos []string) bool {
	if len(campos) != 6 {
		return false
	}
	_, err := strconv.ParseInt(strings.TrimSpace(campos[0]), 10, 64)
	return err == nil
}

func ehCabecalhoFrequencia(campos []string) bool {
	return len(campos) > 0 && strings.TrimSpace(campos[0]) == "ID"
}
