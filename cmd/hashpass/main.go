package main

import (
	"fmt"
	"os"

	"github.com/gestaozabele/presenca/internal/auth"
	"github.com/gestaozabele/presenca/internal/util"
)

// hashpass gera o senha_hash usado no seed do backend em memória.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha>")
		os.Exit(1)
	}

	if err := util.ValidatePassword(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "senha inválida: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao gerar hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
