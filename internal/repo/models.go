package repo

import "time"

// Profile representa o perfil do funcionário (tabela profiles).
type Profile struct {
	ID                string     `json:"id"`
	Nome              string     `json:"nome"`
	Matricula         string     `json:"matricula"`
	Email             string     `json:"email"`
	PatrimonioEstacao *string    `json:"patrimonio_estacao,omitempty"`
	IsAdmin           bool       `json:"is_admin"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// ProfileUpdate agrega campos editáveis do perfil.
type ProfileUpdate struct {
	Nome              string    `json:"nome"`
	Matricula         string    `json:"matricula"`
	Email             string    `json:"email"`
	PatrimonioEstacao *string   `json:"patrimonio_estacao"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FuncionarioResumo é o recorte do perfil embutido nos registros.
type FuncionarioResumo struct {
	Nome      string `json:"nome"`
	Matricula string `json:"matricula"`
}

// RegistroPresenca modela a tabela registros_presenca.
// Data segue o formato yyyy-MM-dd.
type RegistroPresenca struct {
	ID            string             `json:"id"`
	FuncionarioID string             `json:"funcionario_id"`
	Data          string             `json:"data"`
	Status        Status             `json:"status"`
	Observacoes   *string            `json:"observacoes,omitempty"`
	CreatedAt     *time.Time         `json:"created_at,omitempty"`
	UpdatedAt     *time.Time         `json:"updated_at,omitempty"`
	Funcionario   *FuncionarioResumo `json:"profiles,omitempty"`
}

// RegistroInput descreve escrita de um registro (insert ou update).
type RegistroInput struct {
	FuncionarioID string    `json:"funcionario_id"`
	Data          string    `json:"data"`
	Status        Status    `json:"status"`
	Observacoes   *string   `json:"observacoes"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Feriado é somente leitura para a aplicação.
type Feriado struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
	Data string `json:"data"`
	Tipo string `json:"tipo"`
}
