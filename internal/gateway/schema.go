package gateway

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema names of the payloads the API returns.
const (
	schemaMe           = "me"
	schemaAuth         = "auth"
	schemaTracks       = "tracks"
	schemaTrackDetail  = "track-detail"
	schemaEnroll       = "enroll"
	schemaCompleteQuiz = "complete-quiz"
	schemaFinalQuiz    = "complete-final-quiz"
	schemaQuiz         = "quiz"
	schemaQuizList     = "quiz-list"
	schemaAttempt      = "attempt"
	schemaAttemptList  = "attempt-list"
)

// Nested definitions constrain types only; required members are checked
// on envelopes. Decoders drop list items that lack an id.
var (
	// refDef accepts an id string or a populated document.
	refDef = map[string]any{
		"type": []any{"string", "object", "null"},
	}

	refListDef = map[string]any{
		"type":  []any{"array", "null"},
		"items": refDef,
	}

	progressListDef = map[string]any{
		"type": []any{"array", "null"},
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"track":            refDef,
				"completedLessons": refListDef,
			},
		},
	}

	questionDef = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": []any{"string", "null"}},
			"options": map[string]any{
				"type":  []any{"array", "null"},
				"items": map[string]any{"type": "string"},
			},
		},
	}

	questionListDef = map[string]any{
		"type":  []any{"array", "null"},
		"items": questionDef,
	}

	userDef = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"_id":             map[string]any{"type": "string"},
			"username":        map[string]any{"type": []any{"string", "null"}},
			"enrolledTracks":  refListDef,
			"completedTracks": refListDef,
			"progress":        progressListDef,
		},
	}

	quizDef = map[string]any{
		"type":     "object",
		"required": []any{"_id", "questions"},
		"properties": map[string]any{
			"_id":       map[string]any{"type": "string", "minLength": 1},
			"questions": questionListDef,
		},
	}

	quizItemDef = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"_id":       map[string]any{"type": "string"},
			"questions": questionListDef,
		},
	}

	attemptDef = map[string]any{
		"type":     "object",
		"required": []any{"score", "total"},
		"properties": map[string]any{
			"score": map[string]any{"type": "integer", "minimum": 0},
			"total": map[string]any{"type": "integer", "minimum": 0},
		},
	}

	attemptItemDef = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{"type": []any{"integer", "null"}},
			"total": map[string]any{"type": []any{"integer", "null"}},
		},
	}

	trackItemDef = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"_id": map[string]any{"type": "string"},
		},
	}
)

// payloadSchemas maps schema names to JSON Schema definitions of the
// unwrapped payload.
var payloadSchemas = map[string]map[string]any{
	schemaMe: {
		"type":       "object",
		"required":   []any{"user"},
		"properties": map[string]any{"user": userDef},
	},
	schemaAuth: {
		"type":     "object",
		"required": []any{"token", "user"},
		"properties": map[string]any{
			"token": map[string]any{"type": "string", "minLength": 1},
			"user":  userDef,
		},
	},
	schemaTracks: {
		"type":     "object",
		"required": []any{"tracks"},
		"properties": map[string]any{
			"tracks": map[string]any{"type": "array", "items": trackItemDef},
		},
	},
	schemaTrackDetail: {
		"type":     "object",
		"required": []any{"track"},
		"properties": map[string]any{
			"track": trackItemDef,
			"lessons": map[string]any{
				"type": []any{"array", "null"},
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"quiz": questionListDef},
				},
			},
		},
	},
	schemaEnroll: {
		"type":     "object",
		"required": []any{"enrolledTracks"},
		"properties": map[string]any{
			"enrolledTracks": refListDef,
			"progress":       progressListDef,
		},
	},
	schemaCompleteQuiz: {
		"type": "object",
		"properties": map[string]any{
			"nextLessonId": map[string]any{"anyOf": []any{refDef, map[string]any{"type": "null"}}},
		},
	},
	schemaFinalQuiz: {
		"type":     "object",
		"required": []any{"completedTracks"},
		"properties": map[string]any{
			"completedTracks": refListDef,
			"progress":        progressListDef,
		},
	},
	schemaQuiz: quizDef,
	schemaQuizList: {
		"type":     "object",
		"required": []any{"quizzes"},
		"properties": map[string]any{
			"quizzes": map[string]any{"type": "array", "items": quizItemDef},
		},
	},
	schemaAttempt: attemptDef,
	schemaAttemptList: {
		"type":  "array",
		"items": attemptItemDef,
	},
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validatePayload checks payload against the named schema. An empty name
// skips validation.
func validatePayload(name string, payload json.RawMessage) error {
	if name == "" {
		return nil
	}
	var parsed any
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	compiled, err := compiledSchema(name)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema %q: %w", name, err)
	}
	return nil
}

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}
	def, ok := payloadSchemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema")
	}

	// The compiler wants plain decoded JSON values.
	b, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://edumaster/%s.json", name)
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	schemaCache.Store(name, compiled)
	return compiled, nil
}
