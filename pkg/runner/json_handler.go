package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/grounded/pkg/domain"
)

// JSONHandler implements the IOHandler interface for JSON-Lines communication.
//
// Every input line is either a request object ({"question": "..."}), a JSON
// string or plain text. Every output line is the final QAState of one
// question, or a SystemMessage.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// Request is the structured form of an input line.
type Request struct {
	Question string `json:"question"`
}

// SystemMessage is emitted for rejected input.
type SystemMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Input reads one line. Blank lines are skipped; an explicit empty
// question ({"question": ""} or "") is passed through.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		line, err := h.Reader.ReadString('\n')
		text := strings.TrimSpace(line)
		if text == "" {
			if err != nil {
				return "", err
			}
			continue
		}

		return decodeQuestion(text), nil
	}
}

func decodeQuestion(text string) string {
	var req Request
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &req); err == nil {
			return req.Question
		}
	}

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val
	}

	// Fallback: plain text.
	return text
}

// Output emits the state as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, state *domain.QAState) error {
	return h.Encoder.Encode(state)
}

// SystemOutput emits a SystemMessage line.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(SystemMessage{Type: "system", Message: msg})
}
