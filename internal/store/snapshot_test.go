package store

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/educsys/frequencia-academica/internal/logging"
	"github.com/educsys/frequencia-academica/internal/models"
)

func novoArquivos(t *testing.T) *Arquivos {
	t.Helper()
	dir := t.TempDir()
	return Novo(filepath.Join(dir, "usuarios.dat"), filepath.Join(dir, "frequencias.dat"), logging.Nop().Sugar)
}

func TestCarregarSemArquivoDevolveVazio(t *testing.T) {
	a := novoArquivos(t)
	if us := a.CarregarUsuarios(); len(us) != 0 {
		t.Fatalf("esperava coleção vazia, veio %d", len(us))
	}
	if fs := a.CarregarFrequencias(); len(fs) != 0 {
		t.Fatalf("esperava coleção vazia, veio %d", len(fs))
	}
}

func TestSnapshotUsuariosIdaEVolta(t *testing.T) {
	a := novoArquivos(t)

	prof := models.NovoProfessor(2, "Maria Souza", "maria@ex.com", "22222222222", "s3nh4", "Saúde", "Mestre")
	prof.Disciplinas = []string{"Anatomia", "Fisiologia"}
	coord := models.NovoCoordenador(3, "Lucas Costa", "lucas@ex.com", "44444444444", "abc", "Engenharia")
	coord.Ativo = false
	usuarios := []models.Usuario{
		models.NovoAluno(1, "Pedro Silva", "pedro@ex.com", "11111111111", "senha123", "20231001", "Medicina", 2),
		prof,
		coord,
		models.NovoAdministrador(4, "Ana Admin", "ana@ex.com", "33333333333", "x", "TOTAL"),
	}
	if err := a.SalvarUsuarios(usuarios); err != nil {
		t.Fatal(err)
	}

	lidos := a.CarregarUsuarios()
	if len(lidos) != len(usuarios) {
		t.Fatalf("esperava %d usuários, veio %d", len(usuarios), len(lidos))
	}
	for i, u := range lidos {
		esperado := usuarios[i].Dados()
		d := u.Dados()
		if u.Perfil() != usuarios[i].Perfil() || d.ID != esperado.ID || d.Nome != esperado.Nome ||
			d.Email != esperado.Email || d.CPF != esperado.CPF || d.Senha != esperado.Senha || d.Ativo != esperado.Ativo {
			t.Fatalf("usuário %d divergiu: %+v vs %+v", i, d, esperado)
		}
	}
	p, ok := lidos[1].(*models.Professor)
	if !ok {
		t.Fatalf("esperava Professor na posição 1, veio %T", lidos[1])
	}
	if len(p.Disciplinas) != 2 || p.Disciplinas[0] != "Anatomia" {
		t.Fatalf("disciplinas do professor divergiram: %v", p.Disciplinas)
	}
}

func TestSnapshotFrequenciasIdaEVolta(t *testing.T) {
	a := novoArquivos(t)

	ontem := time.Now().AddDate(0, 0, -1)
	fs := []*models.Frequencia{
		{ID: 1, AlunoMatricula: "20231001", Disciplina: "Anatomia", Data: ontem, Presente: true, RegistradoPorCPF: "222", Observacao: "reposição"},
		{ID: 2, AlunoMatricula: "20231002", Disciplina: "Fisiologia", Data: ontem, Presente: false, RegistradoPorCPF: "222"},
	}
	if err := a.SalvarFrequencias(fs); err != nil {
		t.Fatal(err)
	}

	lidas := a.CarregarFrequencias()
	if len(lidas) != 2 {
		t.Fatalf("esperava 2 frequências, veio %d", len(lidas))
	}
	for i, f := range lidas {
		if !f.Igual(fs[i]) {
			t.Fatalf("frequência %d divergiu: %v vs %v", i, f, fs[i])
		}
	}
	if lidas[0].Observacao != "reposição" {
		t.Fatalf("observação divergiu: %q", lidas[0].Observacao)
	}
}

func TestArquivoCorrompidoDegradaParaVazio(t *testing.T) {
	dir := t.TempDir()
	caminho := filepath.Join(dir, "usuarios.dat")
	if err := os.WriteFile(caminho, []byte("isto não é um snapshot"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := Novo(caminho, filepath.Join(dir, "frequencias.dat"), logging.Nop().Sugar)
	if us := a.CarregarUsuarios(); len(us) != 0 {
		t.Fatalf("snapshot corrompido deveria virar coleção vazia, veio %d", len(us))
	}
}

func TestVersaoDesconhecidaDegradaParaVazio(t *testing.T) {
	a := novoArquivos(t)
	if err := a.SalvarUsuarios([]models.Usuario{
		models.NovoAdministrador(1, "Ana", "ana@ex.com", "1", "x", "TOTAL"),
	}); err != nil {
		t.Fatal(err)
	}

	// adultera o campo de versão no cabeçalho
	dados, err := os.ReadFile(a.caminhoUsuarios)
	if err != nil {
		t.Fatal(err)
	}
	dados[8] = 0xFF
	if err := os.WriteFile(a.caminhoUsuarios, dados, 0o644); err != nil {
		t.Fatal(err)
	}

	if us := a.CarregarUsuarios(); len(us) != 0 {
		t.Fatalf("versão desconhecida deveria virar coleção vazia, veio %d", len(us))
	}
}

func TestContagemAbsurdaNoCabecalhoDegradaParaVazio(t *testing.T) {
	a := novoArquivos(t)

	// cabeçalho válido anunciando 0xFFFFFFFF entradas sem corpo algum
	var b bytes.Buffer
	b.Write(assinatura[:])
	_ = binary.Write(&b, binary.BigEndian, versaoAtual)
	b.Write(make([]byte, 16))
	_ = binary.Write(&b, binary.BigEndian, time.Now().Unix())
	_ = binary.Write(&b, binary.BigEndian, uint32(0xFFFFFFFF))
	if err := os.WriteFile(a.caminhoUsuarios, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if us := a.CarregarUsuarios(); len(us) != 0 {
		t.Fatalf("contagem absurda deveria virar coleção vazia, veio %d", len(us))
	}
}

func TestEntradaMaiorQueOArquivoDegradaParaVazio(t *testing.T) {
	a := novoArquivos(t)

	// uma entrada cujo prefixo de tamanho extrapola o restante do arquivo
	var b bytes.Buffer
	b.Write(assinatura[:])
	_ = binary.Write(&b, binary.BigEndian, versaoAtual)
	b.Write(make([]byte, 16))
	_ = binary.Write(&b, binary.BigEndian, time.Now().Unix())
	_ = binary.Write(&b, binary.BigEndian, uint32(1))
	_ = binary.Write(&b, binary.BigEndian, uint32(0xFFFFFFF0))
	if err := os.WriteFile(a.caminhoFrequencias, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if fs := a.CarregarFrequencias(); len(fs) != 0 {
		t.Fatalf("entrada maior que o arquivo deveria virar coleção vazia, veio %d", len(fs))
	}
}
