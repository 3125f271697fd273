package help

import (
	"context"
	"strings"

	mw "clima/internal/middleware"
)

func init() {
	mw.Register(Help{})
}

// Text lists what the assistant understands.
const Text = `Posso ajudar com dados das estações meteorológicas iCrop:

• **Listar estações:** "listar estações", "quais são as estações disponíveis?"
• **Temperatura:** "temperatura da estrela", "temperatura id 12"
• **Clima atual:** "clima em narandiba", "umidade da bartira", "chuva hoje na mutum"
• **Previsão:** "previsão para a estrela"
• **Dados por hora:** "dados por hora da primavera"

Depois da primeira pergunta você pode continuar com "e agora?" ou "e a chuva?" que eu lembro da estação.`

// Help answers "ajuda"/"help" without touching the pipeline.
type Help struct{}

func (Help) ID() string    { return "help" }
func (Help) Priority() int { return 100 }

var triggers = map[string]struct{}{
	"ajuda": {}, "help": {}, "/ajuda": {}, "/help": {}, "socorro": {},
	"o que você faz": {}, "o que voce faz": {}, "como usar": {},
}

func (Help) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil || e.Name != mw.EventBeforeTurn {
		return mw.Decision{}, nil
	}
	q := strings.ToLower(strings.TrimSpace(e.UserText))
	q = strings.TrimRight(q, "?!. ")
	if _, ok := triggers[q]; !ok {
		return mw.Decision{}, nil
	}
	reply := Text
	return mw.Decision{Cancel: true, ReplaceText: &reply, Reason: "help"}, nil
}
