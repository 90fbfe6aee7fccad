package repo

import (
	"errors"
	"strings"
	"time"
)

// DateLayout é o formato de data trocado com o backend (yyyy-MM-dd).
const DateLayout = "2006-01-02"

// ErrDataInvalida indica data fora do formato ISO.
var ErrDataInvalida = errors.New("data inválida")

// FormatDate formata o dia de calendário de t no próprio fuso de t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate interpreta yyyy-MM-dd como meia-noite no fuso informado.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, ErrDataInvalida
	}
	return t, nil
}

// NormalizeDate valida e devolve a data no formato canônico.
func NormalizeDate(raw string) (string, error) {
	t, err := ParseDate(raw, time.UTC)
	if err != nil {
		return "", err
	}
	return FormatDate(t), nil
}
