package repo

import (
	"errors"
	"strings"
)

// Status enumera as situações possíveis de um dia de trabalho.
type Status string

const (
	StatusPresencial Status = "presencial"
	StatusHomeOffice Status = "home_office"
	StatusFerias     Status = "ferias"
	StatusFolga      Status = "folga"
	StatusPlantao    Status = "plantao"
	StatusAtestado   Status = "atestado"
	StatusFalta      Status = "falta"
)

// ErrStatusDesconhecido indica valor fora do catálogo.
var ErrStatusDesconhecido = errors.New("status desconhecido")

// StatusInfo descreve rótulo e cor exibidos na legenda.
type StatusInfo struct {
	Valor     Status `json:"valor"`
	Rotulo    string `json:"rotulo"`
	Descricao string `json:"descricao"`
	Cor       string `json:"cor"`
}

var catalogo = []StatusInfo{
	{Valor: StatusPresencial, Rotulo: "Presencial", Descricao: "Trabalhando no escritório", Cor: "bg-green-500"},
	{Valor: StatusHomeOffice, Rotulo: "Home Office", Descricao: "Trabalhando remotamente", Cor: "bg-blue-500"},
	{Valor: StatusFerias, Rotulo: "Férias", Descricao: "Período de férias", Cor: "bg-purple-500"},
	{Valor: StatusFolga, Rotulo: "Folga", Descricao: "Dia de folga", Cor: "bg-yellow-500"},
	{Valor: StatusPlantao, Rotulo: "Plantão", Descricao: "Plantão especial", Cor: "bg-orange-500"},
	{Valor: StatusAtestado, Rotulo: "Atestado", Descricao: "Atestado médico", Cor: "bg-red-500"},
	{Valor: StatusFalta, Rotulo: "Falta", Descricao: "Ausência não justificada", Cor: "bg-gray-500"},
}

// Catalogo devolve os status na ordem da legenda.
func Catalogo() []StatusInfo {
	out := make([]StatusInfo, len(catalogo))
	copy(out, catalogo)
	return out
}

// ParseStatus normaliza e valida um status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrStatusDesconhecido
	}
	return s, nil
}

// Valid informa se o status pertence ao catálogo.
func (s Status) Valid() bool {
	for _, info := range catalogo {
		if info.Valor == s {
			return true
		}
	}
	return false
}

// Info devolve rótulo e cor; status desconhecido usa o próprio valor.
func (s Status) Info() StatusInfo {
	for _, info := range catalogo {
		if info.Valor == s {
			return info
		}
	}
	return StatusInfo{Valor: s, Rotulo: string(s)}
}

// Label atalho para o rótulo exibido.
func (s Status) Label() string {
	return s.Info().Rotulo
}
