package scraper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pfrederiksen/spfc-calendar/internal/event"
	"github.com/pfrederiksen/spfc-calendar/internal/logger"
)

const (
	defaultCompetition = "Não informada"
	defaultOpponent    = "Não informado"
)

// responseShape tags which layout an extraction response used.
type responseShape int

const (
	shapeUnknown responseShape = iota
	shapeFlat                  // {"jogos": [...]}
	shapeList                  // [...]
	shapeNestedData            // {"data": {"jogos": [...]}}
	shapeExtract               // {"extract": {"jogos": [...]}} or {"extract": [...]}
)

func (s responseShape) String() string {
	switch s {
	case shapeFlat:
		return "flat"
	case shapeList:
		return "list"
	case shapeNestedData:
		return "nested_data"
	case shapeExtract:
		return "extract"
	default:
		return "unknown"
	}
}

// listKeys are the object keys that may hold the fixture list.
var listKeys = []string{"jogos", "events"}

// decodeResponse finds the fixture list in an extraction response.
// Matchers are tried in order and the first hit wins.
func decodeResponse(body []byte) (responseShape, []json.RawMessage) {
	if list, ok := asList(body); ok {
		return shapeList, list
	}

	obj, ok := asObject(body)
	if !ok {
		return shapeUnknown, nil
	}

	if list, ok := listField(obj); ok {
		return shapeFlat, list
	}

	if data, ok := obj["data"]; ok {
		if inner, ok := asObject(data); ok {
			if list, ok := listField(inner); ok {
				return shapeNestedData, list
			}
		}
	}

	if extract, ok := obj["extract"]; ok {
		if inner, ok := asObject(extract); ok {
			if list, ok := listField(inner); ok {
				return shapeExtract, list
			}
		}
		if list, ok := asList(extract); ok {
			return shapeExtract, list
		}
	}

	return shapeUnknown, nil
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func asList(raw json.RawMessage) ([]json.RawMessage, bool) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return nil, false
	}
	return list, true
}

func listField(obj map[string]json.RawMessage) ([]json.RawMessage, bool) {
	for _, key := range listKeys {
		if raw, ok := obj[key]; ok {
			if list, ok := asList(raw); ok {
				return list, true
			}
		}
	}
	return nil, false
}

// parseEvents turns an extraction response into unsynced events with
// canonical start and end instants.
func parseEvents(body []byte) []*event.Event {
	shape, entries := decodeResponse(body)
	if shape == shapeUnknown {
		logger.Warn("No fixture list found in extraction response", logger.Fields{
			"bytes": len(body),
		})
		return make([]*event.Event, 0)
	}

	logger.Debug("Extraction response decoded", logger.Fields{
		"shape":   shape.String(),
		"entries": len(entries),
	})

	events := make([]*event.Event, 0, len(entries))
	for i, raw := range entries {
		var fields map[string]interface{}
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			logger.Warn("Skipping fixture entry that is not an object", logger.Fields{
				"index": i,
			})
			continue
		}
		events = append(events, buildEvent(fields))
	}

	return events
}

func buildEvent(fields map[string]interface{}) *event.Event {
	competition := cleanText(stringField(fields, "competicao"))
	if competition == "" {
		competition = defaultCompetition
	}

	opponent := cleanText(stringField(fields, "adversario"))
	if opponent == "" {
		opponent = defaultOpponent
	}

	dateText := cleanText(stringField(fields, "data"))
	timeText := cleanText(stringField(fields, "horario"))

	evt := event.NewEvent(competition, opponent, dateText, timeText)
	evt.OpponentLogo = firstNonEmpty(stringField(fields, "adversario_logo"), stringField(fields, "logo"))
	evt.Weekday = cleanText(stringField(fields, "dia_semana"))
	evt.Venue = cleanText(firstNonEmpty(stringField(fields, "local"), stringField(fields, "estadio")))

	if home, ok := fields["mandante"].(bool); ok {
		evt.Home = &home
	}

	return evt
}

// stringField reads a field as text. Numbers are formatted; other types and
// missing keys give "".
func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
