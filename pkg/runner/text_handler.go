package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/grounded/pkg/domain"
)

// DefaultPrompt is printed before every question read by a TextHandler.
const DefaultPrompt = "> "

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	Prompt   string
	// Verbose appends the matched topic and outcome to every answer.
	Verbose bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerPrompt replaces DefaultPrompt. An empty prompt prints nothing.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// WithTextHandlerVerbose enables the topic/outcome trailer.
func WithTextHandlerVerbose(verbose bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Verbose = verbose
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// initPump moves the blocking read into a goroutine so Input can honour ctx.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

// Input returns the next non-blank line.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			if h.Prompt != "" {
				fmt.Fprint(h.Writer, h.Prompt)
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			if text := strings.TrimSpace(res.text); text != "" {
				return text, nil
			}
		}
	}
}

// Output prints the answer, rendered when a Renderer is set.
func (h *TextHandler) Output(ctx context.Context, state *domain.QAState) error {
	output := state.Answer
	if h.Renderer != nil {
		if rendered, err := h.Renderer(output); err == nil {
			output = rendered
		}
	}
	if _, err := fmt.Fprintln(h.Writer, strings.TrimSpace(output)); err != nil {
		return err
	}

	if h.Verbose {
		topic := state.Topic
		if topic == "" {
			topic = "none"
		}
		fmt.Fprintf(h.Writer, "[topic: %s | outcome: %s]\n", topic, state.Outcome)
	}
	return nil
}

// SystemOutput prints msg with a "[System]" prefix.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
