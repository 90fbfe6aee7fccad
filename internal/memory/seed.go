package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gestaozabele/presenca/internal/auth"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/util"
)

// Seed descreve o arquivo YAML usado para popular o backend.
type Seed struct {
	Usuarios []SeedUsuario `yaml:"usuarios"`
	Feriados []SeedFeriado `yaml:"feriados"`
}

type SeedUsuario struct {
	Email             string `yaml:"email"`
	SenhaHash         string `yaml:"senha_hash"`
	Nome              string `yaml:"nome"`
	Matricula         string `yaml:"matricula"`
	PatrimonioEstacao string `yaml:"patrimonio_estacao"`
	IsAdmin           bool   `yaml:"is_admin"`
}

type SeedFeriado struct {
	Nome string `yaml:"nome"`
	Data string `yaml:"data"`
	Tipo string `yaml:"tipo"`
}

// LoadSeed lê e decodifica o arquivo de seed.
func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ler seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decodificar seed: %w", err)
	}
	return &seed, nil
}

// ApplySeed cadastra usuários e feriados no backend.
func (b *Backend) ApplySeed(seed *Seed) error {
	if seed == nil {
		return nil
	}
	for _, u := range seed.Usuarios {
		if u.SenhaHash == "" {
			return fmt.Errorf("seed: usuário %s sem senha_hash", u.Email)
		}
		if err := auth.ValidateHash(u.SenhaHash); err != nil {
			return fmt.Errorf("seed: usuário %s: %w", u.Email, err)
		}
		_, err := b.AddUser(u.Email, u.SenhaHash, repo.Profile{
			Nome:              u.Nome,
			Matricula:         u.Matricula,
			PatrimonioEstacao: util.OptionalString(u.PatrimonioEstacao),
			IsAdmin:           u.IsAdmin,
		})
		if err != nil {
			return fmt.Errorf("seed: usuário %s: %w", u.Email, err)
		}
	}
	for _, f := range seed.Feriados {
		data, err := repo.NormalizeDate(f.Data)
		if err != nil {
			return fmt.Errorf("seed: feriado %s: %w", f.Nome, err)
		}
		b.AddFeriado(repo.Feriado{Nome: f.Nome, Data: data, Tipo: f.Tipo})
	}
	return nil
}
