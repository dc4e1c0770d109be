package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/csv-gratuity-report/internal/validation"
)

// ErrNoInput is returned when input ends before a valid answer was given.
var ErrNoInput = errors.New("no input")

// Prompter asks the operator for the gratuity percentage and confirmations.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter creates a prompter reading from reader and writing to writer.
// Nil arguments default to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Gratuity asks for the gratuity percentage until a valid value is entered.
// Invalid input is answered with the validation message and asked again.
// It returns ErrNoInput if input ends first.
func (p *Prompter) Gratuity(ctx context.Context) (float64, error) {
	for {
		line, err := p.ask(ctx, "Gratuity percentage")
		if err != nil {
			return 0, err
		}

		value, err := validation.ParseGratuity(line)
		if err == nil {
			return value, nil
		}

		var vErr *validation.ValidationError
		if !errors.As(err, &vErr) {
			return 0, err
		}
		if _, err := fmt.Fprintln(p.writer, FormatError(vErr.Message)); err != nil {
			return 0, fmt.Errorf("failed to write message: %w", err)
		}
	}
}

// Confirm asks a yes/no question. An empty answer or the end of input mean no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		line, err := p.ask(ctx, question+" [y/N]")
		if errors.Is(err, ErrNoInput) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please answer y or n.")); err != nil {
			return false, fmt.Errorf("failed to write message: %w", err)
		}
	}
}

// ask writes the prompt and reads one trimmed line.
func (p *Prompter) ask(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			// Last line without a trailing newline.
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			// Keep the next output off the prompt line.
			fmt.Fprintln(p.writer)
			return "", ErrNoInput
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}
