package main

import (
	"os"
	"strings"
	"time"

	"github.com/gmofishsauce/a0compact/internal/faultgrammar"
)

func selectFormula(formulae []faultgrammar.CoverageFormula, name string) (faultgrammar.CoverageFormula, bool) {
	for _, f := range formulae {
		if f.Name == name {
			return f, true
		}
	}
	return faultgrammar.CoverageFormula{}, false
}

func joinArgs(argv []string) string {
	return strings.Join(argv, " ")
}

func durationFromSeconds(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
