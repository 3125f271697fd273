package slots

import (
	"fmt"
	"strings"
)

// Assess sets NeedsMoreInfo and FriendlyMessage on req. A defaulted data
// type counts as missing, so a turn naming only a station asks for the kind
// of data instead of silently answering with the climate summary.
func Assess(req *TurnRequest) {
	req.NeedsMoreInfo = false
	req.FriendlyMessage = ""

	hasType := req.DataType.Primary != "" && !req.DataType.Defaulted
	switch {
	case !req.Station.Found && hasType:
		req.NeedsMoreInfo = true
		req.FriendlyMessage = fmt.Sprintf("Perfeito! Você quer saber sobre **%s**. De qual estação você gostaria de ver esses dados?", req.DataType.Primary)
	case req.Station.Found && !hasType:
		req.NeedsMoreInfo = true
		req.FriendlyMessage = fmt.Sprintf("Ótimo! Você quer dados da estação **%s**. Que tipo de informação você gostaria? (temperatura, clima, umidade, etc.)", req.Station.Display())
	case !req.Station.Found && !hasType:
		req.NeedsMoreInfo = true
		req.FriendlyMessage = "Claro! Posso ajudar você com dados climáticos. Que tipo de informação você gostaria e de qual estação?"
	}
}

// Partial returns the slots of req worth carrying into the next turn after
// an incomplete turn: the station if found, the primary kind if it was not
// defaulted.
func Partial(req *TurnRequest) *TurnRequest {
	out := req.Clone()
	out.NeedsMoreInfo = false
	out.FriendlyMessage = ""
	if out.DataType.Defaulted {
		out.DataType = DataTypeReference{}
	}
	return out
}

// Display renders the reference for messages: the name, else "ID n".
func (s StationReference) Display() string {
	if s.Name != "" {
		return s.Name
	}
	if s.ID != nil {
		return fmt.Sprintf("ID %d", *s.ID)
	}
	return ""
}

// Summary renders a readable digest of the request.
func Summary(req *TurnRequest) string {
	var b strings.Builder
	b.WriteString("📋 **Resumo do Pedido:**\n\n")

	switch {
	case req.Station.ID != nil:
		fmt.Fprintf(&b, "📍 **Estação:** ID %d\n", *req.Station.ID)
	case req.Station.Found:
		fmt.Fprintf(&b, "📍 **Estação:** %s\n", req.Station.Name)
	default:
		b.WriteString("📍 **Estação:** Não identificada\n")
	}

	fmt.Fprintf(&b, "📊 **Dados:** %s\n", req.DataType.Primary)
	if len(req.DataType.Secondary) > 0 {
		fmt.Fprintf(&b, "📊 **Dados secundários:** %s\n", joinKinds(req.DataType.Secondary))
	}
	if len(req.DataType.Specific) > 0 {
		fmt.Fprintf(&b, "📊 **Específicos:** %s\n", joinKinds(req.DataType.Specific))
	}

	if req.DateTime.IsCurrent {
		b.WriteString("⏰ **Período:** Mais recente disponível\n")
	} else {
		b.WriteString("⏰ **Período:** Específico\n")
		if req.DateTime.Date != "" {
			fmt.Fprintf(&b, "📅 **Data:** %s\n", req.DateTime.Date)
		}
		if req.DateTime.Time != "" {
			fmt.Fprintf(&b, "🕐 **Hora:** %s\n", req.DateTime.Time)
		}
	}
	return b.String()
}

func joinKinds(kinds []DataKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
