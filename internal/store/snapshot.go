// Package store implementa o snapshot binário das coleções do sistema.
// O formato é próprio e versionado: cabeçalho com assinatura, versão,
// UUID do snapshot e contagem, seguido de entradas prefixadas por tamanho.
package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/educsys/frequencia-academica/internal/apperr"
	"github.com/educsys/frequencia-academica/internal/metrics"
	"github.com/educsys/frequencia-academica/internal/models"
)

var assinatura = [8]byte{'F', 'R', 'E', 'Q', 'S', 'N', 'A', 'P'}

const versaoAtual uint16 = 1

// Etiquetas de variante nas entradas de usuário.
const (
	tagAluno uint8 = iota + 1
	tagProfessor
	tagCoordenador
	tagAdministrador
)

// Arquivos grava e lê os snapshots de usuários e frequências em caminhos
// injetados na construção, para que testes possam apontar para diretórios
// temporários.
type Arquivos struct {
	caminhoUsuarios    string
	caminhoFrequencias string
	log                *zap.SugaredLogger
}

func Novo(caminhoUsuarios, caminhoFrequencias string, log *zap.SugaredLogger) *Arquivos {
	return &Arquivos{
		caminhoUsuarios:    caminhoUsuarios,
		caminhoFrequencias: caminhoFrequencias,
		log:                log,
	}
}

// ===== Usuários =====

func (a *Arquivos) SalvarUsuarios(usuarios []models.Usuario) error {
	inicio := time.Now()
	entradas := make([][]byte, 0, len(usuarios))
	for _, u := range usuarios {
		entradas = append(entradas, codificaUsuario(u))
	}
	if err := a.grava(a.caminhoUsuarios, entradas); err != nil {
		a.log.Errorw("falha ao gravar snapshot de usuários", "arquivo", a.caminhoUsuarios, "err", err)
		return apperr.FalhaPersistencia("salvar usuários", err)
	}
	metrics.ObserveSnapshot(time.Since(inicio))
	a.log.Infow("snapshot de usuários gravado", "arquivo", a.caminhoUsuarios, "total", len(usuarios))
	return nil
}

// CarregarUsuarios devolve a coleção gravada. Arquivo ausente ou corrompido
// degrada para coleção vazia; o erro é registrado aqui, nunca propagado.
func (a *Arquivos) CarregarUsuarios() []models.Usuario {
	entradas, ok := a.le(a.caminhoUsuarios)
	if !ok {
		return nil
	}
	usuarios := make([]models.Usuario, 0, len(entradas))
	for i, e := range entradas {
		u, err := decodificaUsuario(e)
		if err != nil {
			a.log.Warnw("snapshot de usuários corrompido, descartando", "arquivo", a.caminhoUsuarios, "entrada", i, "err", err)
			return nil
		}
		usuarios = append(usuarios, u)
	}
	a.log.Infow("usuários carregados do snapshot", "total", len(usuarios))
	return usuarios
}

// ===== Frequências =====

func (a *Arquivos) SalvarFrequencias(fs []*models.Frequencia) error {
	inicio := time.Now()
	entradas := make([][]byte, 0, len(fs))
	for _, f := range fs {
		entradas = append(entradas, codificaFrequencia(f))
	}
	if err := a.grava(a.caminhoFrequencias, entradas); err != nil {
		a.log.Errorw("falha ao gravar snapshot de frequências", "arquivo", a.caminhoFrequencias, "err", err)
		return apperr.FalhaPersistencia("salvar frequências", err)
	}
	metrics.ObserveSnapshot(time.Since(inicio))
	a.log.Infow("snapshot de frequências gravado", "arquivo", a.caminhoFrequencias, "total", len(fs))
	return nil
}

func (a *Arquivos) CarregarFrequencias() []*models.Frequencia {
	entradas, ok := a.le(a.caminhoFrequencias)
	if !ok {
		return nil
	}
	fs := make([]*models.Frequencia, 0, len(entradas))
	for i, e := range entradas {
		f, err := decodificaFrequencia(e)
		if err != nil {
			a.log.Warnw("snapshot de frequências corrompido, descartando", "arquivo", a.caminhoFrequencias, "entrada", i, "err", err)
			return nil
		}
		fs = append(fs, f)
	}
	a.log.Infow("frequências carregadas do snapshot", "total", len(fs))
	return fs
}

// ===== Arquivo físico =====

// grava escreve em arquivo temporário no mesmo diretório e renomeia por
// cima do destino, para o snapshot trocar de forma atômica.
func (a *Arquivos) grava(caminho string, entradas [][]byte) error {
	if err := os.MkdirAll(filepath.Dir(caminho), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(caminho), filepath.Base(caminho)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	var cab bytes.Buffer
	cab.Write(assinatura[:])
	_ = binary.Write(&cab, binary.BigEndian, versaoAtual)
	id := uuid.New()
	cab.Write(id[:])
	_ = binary.Write(&cab, binary.BigEndian, time.Now().Unix())
	_ = binary.Write(&cab, binary.BigEndian, uint32(len(entradas)))
	if _, err := tmp.Write(cab.Bytes()); err != nil {
		return err
	}
	for _, e := range entradas {
		var pre [4]byte
		binary.BigEndian.PutUint32(pre[:], uint32(len(e)))
		if _, err := tmp.Write(pre[:]); err != nil {
			return err
		}
		if _, err := tmp.Write(e); err != nil {
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), caminho)
}

// le devolve as entradas brutas do snapshot; ok=false significa "use vazio".
func (a *Arquivos) le(caminho string) ([][]byte, bool) {
	dados, err := os.ReadFile(caminho)
	if err != nil {
		if os.IsNotExist(err) {
			a.log.Infow("snapshot inexistente, iniciando vazio", "arquivo", caminho)
		} else {
			a.log.Warnw("não foi possível ler o snapshot, iniciando vazio", "arquivo", caminho, "err", err)
		}
		return nil, false
	}
	r := bytes.NewReader(dados)

	var magia [8]byte
	if _, err := io.ReadFull(r, magia[:]); err != nil || magia != assinatura {
		a.log.Warnw("snapshot com assinatura inválida, descartando", "arquivo", caminho)
		return nil, false
	}
	var versao uint16
	if err := binary.Read(r, binary.BigEndian, &versao); err != nil || versao != versaoAtual {
		a.log.Warnw("snapshot com versão desconhecida, descartando", "arquivo", caminho, "versao", versao)
		return nil, false
	}
	var idSnapshot [16]byte
	if _, err := io.ReadFull(r, idSnapshot[:]); err != nil {
		a.log.Warnw("snapshot truncado, descartando", "arquivo", caminho, "err", err)
		return nil, false
	}
	var criadoEm int64
	var total uint32
	if err := binary.Read(r, binary.BigEndian, &criadoEm); err != nil {
		a.log.Warnw("snapshot truncado, descartando", "arquivo", caminho, "err", err)
		return nil, false
	}
	if err := binary.Read(r, binary.BigEndian, &total); err != nil {
		a.log.Warnw("snapshot truncado, descartando", "arquivo", caminho, "err", err)
		return nil, false
	}
	// cada entrada ocupa no mínimo o prefixo de 4 bytes; contagem acima
	// disso é cabeçalho corrompido, não vale dimensionar alocação por ela
	if int64(total)*4 > int64(r.Len()) {
		a.log.Warnw("snapshot com contagem inválida, descartando", "arquivo", caminho, "total", total)
		return nil, false
	}

	entradas := make([][]byte, 0, total)
	for i := uint32(0); i < total; i++ {
		var tam uint32
		if err := binary.Read(r, binary.BigEndian, &tam); err != nil {
			a.log.Warnw("snapshot truncado, descartando", "arquivo", caminho, "entrada", i, "err", err)
			return nil, false
		}
		if int(tam) > r.Len() {
			a.log.Warnw("snapshot com entrada maior que o arquivo, descartando", "arquivo", caminho, "entrada", i, "tam", tam)
			return nil, false
		}
		e := make([]byte, tam)
		if _, err := io.ReadFull(r, e); err != nil {
			a.log.Warnw("snapshot truncado, descartando", "arquivo", caminho, "entrada", i, "err", err)
			return nil, false
		}
		entradas = append(entradas, e)
	}
	a.log.Debugw("snapshot lido", "arquivo", caminho,
		"snapshot_id", uuid.UUID(idSnapshot).String(),
		"criado_em", time.Unix(criadoEm, 0).Format(time.RFC3339))
	return entradas, true
}

// ===== Codificação das entradas =====

func codificaUsuario(u models.Usuario) []byte {
	var b bytes.Buffer
	d := u.Dados()
	switch v := u.(type) {
	case *models.Aluno:
		b.WriteByte(tagAluno)
		escreveDados(&b, d)
		escreveString(&b, v.Matricula)
		escreveString(&b, v.Curso)
		_ = binary.Write(&b, binary.BigEndian, int32(v.Semestre))
	case *models.Professor:
		b.WriteByte(tagProfessor)
		escreveDados(&b, d)
		escreveString(&b, v.Area)
		escreveString(&b, v.Titulacao)
		escreveLista(&b, v.Disciplinas)
	case *models.Coordenador:
		b.WriteByte(tagCoordenador)
		escreveDados(&b, d)
		escreveString(&b, v.Curso)
		escreveLista(&b, v.DisciplinasGerenciadas)
	case *models.Administrador:
		b.WriteByte(tagAdministrador)
		escreveDados(&b, d)
		escreveString(&b, v.NivelAcesso)
	}
	return b.Bytes()
}

func decodificaUsuario(e []byte) (models.Usuario, error) {
	r := bytes.NewReader(e)
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	d, err := leDados(r)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagAluno:
		matricula, err := leString(r)
		if err != nil {
			return nil, err
		}
		curso, err := leString(r)
		if err != nil {
			return nil, err
		}
		var semestre int32
		if err := binary.Read(r, binary.BigEndian, &semestre); err != nil {
			return nil, err
		}
		a := models.NovoAluno(d.ID, d.Nome, d.Email, d.CPF, d.Senha, matricula, curso, int(semestre))
		a.Ativo = d.Ativo
		return a, nil
	case tagProfessor:
		area, err := leString(r)
		if err != nil {
			return nil, err
		}
		titulacao, err := leString(r)
		if err != nil {
			return nil, err
		}
		disciplinas, err := leLista(r)
		if err != nil {
			return nil, err
		}
		p := models.NovoProfessor(d.ID, d.Nome, d.Email, d.CPF, d.Senha, area, titulacao)
		p.Ativo = d.Ativo
		p.Disciplinas = disciplinas
		return p, nil
	case tagCoordenador:
		curso, err := leString(r)
		if err != nil {
			return nil, err
		}
		disciplinas, err := leLista(r)
		if err != nil {
			return nil, err
		}
		c := models.NovoCoordenador(d.ID, d.Nome, d.Email, d.CPF, d.Senha, curso)
		c.Ativo = d.Ativo
		c.DisciplinasGerenciadas = disciplinas
		return c, nil
	case tagAdministrador:
		nivel, err := leString(r)
		if err != nil {
			return nil, err
		}
		ad := models.NovoAdministrador(d.ID, d.Nome, d.Email, d.CPF, d.Senha, nivel)
		ad.Ativo = d.Ativo
		return ad, nil
	default:
		return nil, fmt.Errorf("variante de usuário desconhecida: %d", tag)
	}
}

func codificaFrequencia(f *models.Frequencia) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.BigEndian, f.ID)
	escreveString(&b, f.AlunoMatricula)
	escreveString(&b, f.Disciplina)
	_ = binary.Write(&b, binary.BigEndian, f.Data.Unix())
	if f.Presente {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
	escreveString(&b, f.RegistradoPorCPF)
	escreveString(&b, f.Observacao)
	return b.Bytes()
}

func decodificaFrequencia(e []byte) (*models.Frequencia, error) {
	r := bytes.NewReader(e)
	var id int64
	if err := binary.Read(r, binary.BigEndian, &id); err != nil {
		return nil, err
	}
	matricula, err := leString(r)
	if err != nil {
		return nil, err
	}
	disciplina, err := leString(r)
	if err != nil {
		return nil, err
	}
	var unix int64
	if err := binary.Read(r, binary.BigEndian, &unix); err != nil {
		return nil, err
	}
	presenteByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	registradoPor, err := leString(r)
	if err != nil {
		return nil, err
	}
	observacao, err := leString(r)
	if err != nil {
		return nil, err
	}
	return &models.Frequencia{
		ID:               id,
		AlunoMatricula:   matricula,
		Disciplina:       disciplina,
		Data:             time.Unix(unix, 0),
		Presente:         presenteByte == 1,
		RegistradoPorCPF: registradoPor,
		Observacao:       observacao,
	}, nil
}

func escreveDados(b *bytes.Buffer, d *models.DadosUsuario) {
	_ = binary.Write(b, binary.BigEndian, d.ID)
	escreveString(b, d.Nome)
	escreveString(b, d.Email)
	escreveString(b, d.CPF)
	escreveString(b, d.Senha)
	if d.Ativo {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
}

func leDados(r *bytes.Reader) (models.DadosUsuario, error) {
	var d models.DadosUsuario
	if err := binary.Read(r, binary.BigEndian, &d.ID); err != nil {
		return d, err
	}
	var err error
	if d.Nome, err = leString(r); err != nil {
		return d, err
	}
	if d.Email, err = leString(r); err != nil {
		return d, err
	}
	if d.CPF, err = leString(r); err != nil {
		return d, err
	}
	if d.Senha, err = leString(r); err != nil {
		return d, err
	}
	ativo, err := r.ReadByte()
	if err != nil {
		return d, err
	}
	d.Ativo = ativo == 1
	return d, nil
}

func escreveString(b *bytes.Buffer, s string) {
	_ = binary.Write(b, binary.BigEndian, uint32(len(s)))
	b.WriteString(s)
}

func leString(r *bytes.Reader) (string, error) {
	var tam uint32
	if err := binary.Read(r, binary.BigEndian, &tam); err != nil {
		return "", err
	}
	if int(tam) > r.Len() {
		return "", fmt.Errorf("string com tamanho inválido: %d", tam)
	}
	buf := make([]byte, tam)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func escreveLista(b *bytes.Buffer, itens []string) {
	_ = binary.Write(b, binary.BigEndian, uint16(len(itens)))
	for _, s := range itens {
		escreveString(b, s)
	}
}

func leLista(r *bytes.Reader) ([]string, error) {
	var total uint16
	if err := binary.Read(r, binary.BigEndian, &total); err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	itens := make([]string, 0, total)
	for i := uint16(0); i < total; i++ {
		s, err := leString(r)
		if err != nil {
			return nil, err
		}
		itens = append(itens, s)
	}
	return itens, nil
}
