package models

import "testing"

func TestCapacidadesPorVariante(t *testing.T) {
	casos := []struct {
		u               Usuario
		perfil          Perfil
		editaFrequencia bool
		gerenciaUsuario bool
	}{
		{NovoAluno(1, "Ana", "ana@ex.com", "1", "s", "2024001", "Engenharia", 1), PerfilAluno, false, false},
		{NovoProfessor(2, "Carlos", "carlos@ex.com", "2", "s", "Exatas", "Doutor"), PerfilProfessor, true, false},
		{NovoCoordenador(3, "João", "joao@ex.com", "3", "s", "Computação"), PerfilCoordenador, true, true},
		{NovoAdministrador(4, "Lucia", "lucia@ex.com", "4", "s", "TOTAL"), PerfilAdministrador, true, true},
	}
	for _, c := range casos {
		if c.u.Perfil() != c.perfil {
			t.Errorf("perfil esperado %s, veio %s", c.perfil, c.u.Perfil())
		}
		if c.u.PodeEditarFrequencia() != c.editaFrequencia {
			t.Errorf("%s: PodeEditarFrequencia esperado %v", c.perfil, c.editaFrequencia)
		}
		if c.u.PodeGerenciarUsuarios() != c.gerenciaUsuario {
			t.Errorf("%s: PodeGerenciarUsuarios esperado %v", c.perfil, c.gerenciaUsuario)
		}
		if len(c.u.Permissoes()) == 0 {
			t.Errorf("%s: toda variante carrega permissões", c.perfil)
		}
		if c.u.RelatorioPersonalizado() == "" {
			t.Errorf("%s: relatório personalizado vazio", c.perfil)
		}
		if !c.u.Dados().Ativo {
			t.Errorf("%s: usuário novo nasce ativo", c.perfil)
		}
	}
}

func TestEmailIgualIgnoraCaixa(t *testing.T) {
	a := NovoAluno(1, "Ana", "Ana@Exemplo.COM", "1", "s", "m", "c", 1)
	if !a.Dados().EmailIgual("ana@exemplo.com") {
		t.Fatal("comparação de email deveria ignorar maiúsculas")
	}
	if a.Dados().EmailIgual("outra@exemplo.com") {
		t.Fatal("emails diferentes não podem casar")
	}
}

func TestDescricaoCompleta(t *testing.T) {
	p := NovoProfessor(2, "Carlos", "carlos@ex.com", "2", "s", "Exatas", "Doutor")
	esperado := "Carlos (Professor) - carlos@ex.com"
	if DescricaoCompleta(p) != esperado {
		t.Fatalf("esperava %q, veio %q", esperado, DescricaoCompleta(p))
	}
}
