package firecrawl

// SchedulePrompt instructs the extractor to list every fixture on the club's
// calendar page.
const SchedulePrompt = `Extraia TODOS os jogos do calendário do São Paulo FC que aparecem na página.
Para cada jogo, extraia:
- competicao: nome do campeonato/competição
- adversario: nome do time adversário (não incluir 'x' ou 'vs')
- adversario_logo: URL completa da imagem do escudo do adversário se disponível
- data: data do jogo no formato DD/MM/YYYY
- dia_semana: dia da semana (Segunda, Terça, etc)
- horario: horário no formato HH:MM
- local: nome do estádio
- mandante: true se São Paulo joga em casa, false se joga fora

Inclua jogos futuros e próximos. Retorne uma lista completa de jogos.`

// ScheduleSchema returns the JSON schema for a list of fixtures under "jogos".
func ScheduleSchema() map[string]interface{} {
	field := func(kind, description string) map[string]interface{} {
		return map[string]interface{}{"type": kind, "description": description}
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"jogos": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"competicao":      field("string", "Nome da competição ou campeonato"),
						"adversario":      field("string", "Nome do time adversário"),
						"adversario_logo": field("string", "URL da imagem/logo do adversário"),
						"data":            field("string", "Data do jogo no formato DD/MM/YYYY"),
						"dia_semana":      field("string", "Dia da semana"),
						"horario":         field("string", "Horário do jogo no formato HH:MM"),
						"local":           field("string", "Estádio ou local do jogo"),
						"mandante":        field("boolean", "True se o São Paulo é o mandante/time da casa"),
					},
					"required": []string{"competicao", "adversario", "data", "horario"},
				},
			},
		},
	}
}
