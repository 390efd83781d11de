package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeSpace = 10000

// CodeGenerator produces the 4-digit codes emailed at login.
type CodeGenerator interface {
	Generate() (string, error)
}

// CodeGeneratorFunc adapts a plain function to CodeGenerator.
type CodeGeneratorFunc func() (string, error)

func (f CodeGeneratorFunc) Generate() (string, error) { return f() }

// RandomCodeGenerator draws codes uniformly from 0000-9999 using crypto/rand.
type RandomCodeGenerator struct{}

func (RandomCodeGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", fmt.Errorf("generate login code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
