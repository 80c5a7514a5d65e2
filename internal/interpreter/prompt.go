package interpreter

import (
	"fmt"

	"bi-service/internal/model"
)

const systemPrompt = `Você é um assistente especializado em análise de dados de inspeções veiculares. Sua tarefa é interpretar consultas em linguagem natural e convertê-las em parâmetros para visualizações de dados. Responda apenas com um objeto JSON contendo os parâmetros para a visualização, sem explicações adicionais.

Campos aceitos:
- intention: VISUALIZE | VISUALIZE_TREND | COMPARE | LIST | UNKNOWN
- metric: compliance_rate | non_compliance_rate | total_inspections | compliant_inspections | non_compliant_inspections | non_compliance
- groupBy: vehicle_type | driver | garage
- timeRange: {"period": "this_month" | "last_month" | "this_year" | "last_3_months" | "last_6_months" | "last_12_months", "startDate": "YYYY-MM-DD", "endDate": "YYYY-MM-DD"}
- visualization: BAR_CHART | LINE_CHART | PIE_CHART | TABLE
- limit: número inteiro
- order: asc | desc
- message: descrição curta em português`

func userPrompt(query string) string {
	return fmt.Sprintf("Converta a seguinte consulta em parâmetros para visualização: %q", query)
}

func buildMessages(query string, history []model.ChatMessage) []model.ChatMessage {
	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	messages := make([]model.ChatMessage, 0, len(history)+2)
	messages = append(messages, model.ChatMessage{Role: model.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, model.ChatMessage{Role: model.RoleUser, Content: userPrompt(query)})
	return messages
}
