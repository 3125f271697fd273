package onboarding

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"clima/internal/middleware"
)

// MiddlewareMenu toggles the registered middlewares on and off.
type MiddlewareMenu struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewMiddlewareMenu(scanner *bufio.Scanner, out io.Writer) *MiddlewareMenu {
	return &MiddlewareMenu{scanner: scanner, out: out}
}

// Run shows the menu and returns the disabled ids, sorted.
func (m *MiddlewareMenu) Run(disabled []string) []string {
	ids := middleware.RegisteredIDs()
	if len(ids) == 0 {
		return disabled
	}

	enabled := make(map[string]bool, len(ids))
	for _, id := range ids {
		enabled[id] = !slices.Contains(disabled, id)
	}

	for {
		fmt.Fprintln(m.out, "\nRespostas automáticas:")
		for i, id := range ids {
			state := "✅ [ON] "
			if !enabled[id] {
				state = "❌ [OFF]"
			}
			fmt.Fprintf(m.out, "%2d) %s %s\n", i+1, state, id)
		}
		fmt.Fprintln(m.out, " 0) Concluir")
		fmt.Fprint(m.out, "\nNúmero para ligar/desligar (0 conclui): ")

		if !m.scanner.Scan() {
			break
		}
		input := strings.TrimSpace(m.scanner.Text())
		if input == "0" || input == "" {
			break
		}

		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(ids) {
			fmt.Fprintln(m.out, "⚠️  Seleção inválida.")
			continue
		}
		enabled[ids[idx-1]] = !enabled[ids[idx-1]]
	}

	var out []string
	for _, id := range ids {
		if !enabled[id] {
			out = append(out, id)
		}
	}
	return out
}
