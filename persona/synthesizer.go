package persona

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reddit-persona/config"
	"reddit-persona/models"
)

// Persona methods recorded in artifacts.
const (
	MethodModel     = "model"
	MethodTemplated = "templated"
)

// minPersonaChars 미만의 모델 출력은 쓸 수 없는 결과로 본다.
const minPersonaChars = 20

// Input is everything the synthesizer needs for one user.
type Input struct {
	Username string
	Records  []models.ActivityRecord
	Profile  models.SentimentProfile
	// Progress receives stage-local progress (0-100) and a message. Optional.
	Progress func(progress int, message string)
}

// Result is the synthesized persona text and how it was produced.
type Result struct {
	Text   string `json:"text"`
	Method string `json:"method"`
	Model  string `json:"model,omitempty"`
	// Note explains a fallback, empty otherwise.
	Note string `json:"note,omitempty"`
}

type Synthesizer struct {
	gen            Generator
	timeout        time.Duration
	maxPromptChars int
}

// NewSynthesizer 는 gen 이 nil 이면 항상 템플릿 요약을 쓰는 Synthesizer 를 만든다.
func NewSynthesizer(gen Generator, timeout time.Duration, maxPromptChars int) *Synthesizer {
	return &Synthesizer{gen: gen, timeout: timeout, maxPromptChars: maxPromptChars}
}

// Synthesize never returns an error. Generator failures are logged and the
// templated persona is returned instead.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) Result {
	report := func(p int, msg string) {
		if in.Progress != nil {
			in.Progress(p, msg)
		}
	}

	if s.gen == nil {
		report(50, "Building persona from activity statistics...")
		res := Result{Text: Templated(in), Method: MethodTemplated}
		report(100, "Persona generation complete (templated)")
		return res
	}

	report(0, "Creating persona prompt...")
	text, err := s.generate(ctx, in)
	if err == nil {
		report(100, "Persona generation complete!")
		return Result{Text: text, Method: MethodModel, Model: s.gen.Name()}
	}

	config.WarnWithFields("persona generation failed, using templated fallback", config.Fields{
		"username":  in.Username,
		"generator": s.gen.Name(),
		"error":     err.Error(),
	})
	report(60, "Using fallback generation method...")
	res := Result{
		Text:   Templated(in),
		Method: MethodTemplated,
		Model:  s.gen.Name(),
		Note:   err.Error(),
	}
	report(100, "Persona generation complete (fallback method)!")
	return res
}

// generate 는 생성기 실패를 ErrGeneratorFailed 로 감싼다. 생성기의 panic 도 실패로 취급한다.
func (s *Synthesizer) generate(ctx context.Context, in Input) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = "", fmt.Errorf("%w: panic: %v", ErrGeneratorFailed, p)
		}
	}()

	prompt, err := BuildPrompt(in, s.maxPromptChars)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneratorFailed, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if in.Progress != nil {
		in.Progress(20, "Model generating personality profile...")
	}
	out, err = s.gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s", ErrGeneratorFailed, s.timeout)
		}
		return "", fmt.Errorf("%w: %w", ErrGeneratorFailed, err)
	}

	out = cleanOutput(out)
	if len([]rune(out)) < minPersonaChars {
		return "", fmt.Errorf("%w: output too short (%d chars)", ErrGeneratorFailed, len([]rune(out)))
	}
	return out, nil
}

// cleanOutput 은 모델이 프롬프트를 되풀이한 경우 마지막 "\nPERSONA:" 이후만 남긴다.
func cleanOutput(s string) string {
	if strings.Contains(s, "Based on this data") {
		if i := strings.LastIndex(s, "\nPERSONA:"); i >= 0 {
			s = s[i+len("\nPERSONA:"):]
		}
	}
	return strings.TrimSpace(s)
}
