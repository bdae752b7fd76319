package applications

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed quiz_schema.json
var quizSchemaJSON []byte

var (
	quizSchemaOnce sync.Once
	quizSchema     *gojsonschema.Schema
	quizSchemaErr  error
)

const quizField = "quizDetails"

func loadQuizSchema() (*gojsonschema.Schema, error) {
	quizSchemaOnce.Do(func() {
		quizSchema, quizSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(quizSchemaJSON))
	})
	return quizSchema, quizSchemaErr
}

// ParseQuiz validates the quiz widget payload and decodes it.
// An empty payload means no quiz was taken.
func ParseQuiz(raw string) (*QuizResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	schema, err := loadQuizSchema()
	if err != nil {
		return nil, fmt.Errorf("load quiz schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, &ValidationError{Field: quizField, Reason: "not valid JSON"}
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, &ValidationError{Field: quizField, Reason: strings.Join(msgs, "; ")}
	}

	var quiz QuizResult
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return nil, &ValidationError{Field: quizField, Reason: err.Error()}
	}
	return &quiz, nil
}

// UnmarshalJSON accepts "chosen" as a number, a numeric string, or null.
func (d *QuizDetail) UnmarshalJSON(data []byte) error {
	type plain QuizDetail
	var aux struct {
		plain
		Chosen json.RawMessage `json:"chosen"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = QuizDetail(aux.plain)
	d.Chosen = nil

	raw := strings.TrimSpace(string(aux.Chosen))
	if raw == "" || raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("chosen: %w", err)
	}
	d.Chosen = &n
	return nil
}
