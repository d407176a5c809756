package forecast

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/bchung1201/PolyMaster/internal/edge"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestExtractProbability(t *testing.T) {
	cases := []struct {
		name        string
		text        string
		wantProb    float64
		wantConf    edge.Confidence
		wantMatched bool
	}{
		{
			"conclusion sentence",
			"CONCLUSION: I believe this question has a likelihood of 0.72 for outcome of YES.",
			0.72, edge.High, true,
		},
		{
			"likelihood as percentage number",
			"has a likelihood of 65 for outcome of YES",
			0.65, edge.High, true,
		},
		{
			"likelihood with leading dot",
			"Likelihood of .8 seems right.",
			0.8, edge.High, true,
		},
		{
			"explicit percent",
			"I'd put it around 35% given the polling.",
			0.35, edge.Medium, true,
		},
		{
			"percent with space",
			"roughly 12 % chance",
			0.12, edge.Medium, true,
		},
		{
			"bare decimal",
			"Probability: 0.3 based on priors.",
			0.3, edge.Low, true,
		},
		{
			"skips out-of-range numbers",
			"In 2024 the base rate was 0.4 for such races.",
			0.4, edge.Low, true,
		},
		{
			"integers only",
			"I estimate 7 out of 10.",
			0.5, edge.Low, false,
		},
		{
			"no numbers at all",
			"No idea, far too uncertain.",
			0.5, edge.Low, false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prob, conf, matched := extractProbability(tc.text, 0.5)
			if !almostEqual(prob, tc.wantProb) {
				t.Fatalf("probability=%v want=%v", prob, tc.wantProb)
			}
			if conf != tc.wantConf {
				t.Fatalf("confidence=%q want=%q", conf, tc.wantConf)
			}
			if matched != tc.wantMatched {
				t.Fatalf("matched=%v want=%v", matched, tc.wantMatched)
			}
		})
	}
}

func TestExtractConfidence(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		want   edge.Confidence
		wantOK bool
	}{
		{"high", "CONFIDENCE: HIGH", edge.High, true},
		{"lowercase", "confidence: low", edge.Low, true},
		{"medium in prose", "...\nCONFIDENCE: MEDIUM\nCATALYSTS: none", edge.Medium, true},
		{"absent", "no grading here", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractConfidence(tc.text)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("got=%q ok=%v want=%q ok=%v", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestExtractRationale(t *testing.T) {
	structured := "ANALYSIS: polls moved sharply this week.\nCONCLUSION: I believe ..."
	if got := extractRationale(structured); got != "polls moved sharply this week." {
		t.Fatalf("rationale=%q", got)
	}
	plain := "  just a blob of text  "
	if got := extractRationale(plain); got != "just a blob of text" {
		t.Fatalf("rationale=%q", got)
	}
}

type stubCompleter struct {
	text   string
	err    error
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestLLMProviderForecast(t *testing.T) {
	stub := &stubCompleter{text: "ANALYSIS: tight race.\n" +
		"CONCLUSION: I believe this question has a likelihood of 0.8 for outcome of YES.\n" +
		"CONFIDENCE: MEDIUM"}
	p := &LLMProvider{Client: stub}

	got, err := p.Forecast(context.Background(), Request{
		MarketID:  "m1",
		Question:  "Will the election end soon?",
		YesPrice:  0.55,
		NoPrice:   0.45,
		Headlines: []string{"ballots counted overnight"},
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !almostEqual(got.Probability, 0.8) {
		t.Fatalf("probability=%v want=0.8", got.Probability)
	}
	if got.Confidence != edge.Medium {
		t.Fatalf("confidence=%q want=MEDIUM", got.Confidence)
	}
	if got.Fallback {
		t.Fatal("fallback=true for a parseable answer")
	}
	if got.Rationale != "tight race." {
		t.Fatalf("rationale=%q", got.Rationale)
	}
	if !strings.Contains(stub.prompt, "Will the election end soon?") {
		t.Fatal("prompt missing question")
	}
	if !strings.Contains(stub.prompt, "ballots counted overnight") {
		t.Fatal("prompt missing headlines")
	}
}

func TestLLMProviderUnusableAnswer(t *testing.T) {
	p := &LLMProvider{Client: &stubCompleter{text: "cannot say"}, Default: 0.5}

	got, err := p.Forecast(context.Background(), Request{MarketID: "m1"})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !got.Fallback {
		t.Fatal("expected fallback forecast")
	}
	if !almostEqual(got.Probability, 0.5) || got.Confidence != edge.Low {
		t.Fatalf("got=%+v want probability=0.5 confidence=LOW", got)
	}
}

func TestLLMProviderError(t *testing.T) {
	p := &LLMProvider{Client: &stubCompleter{err: errors.New("boom")}}
	if _, err := p.Forecast(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
}

type errProvider struct{ err error }

func (e errProvider) Forecast(context.Context, Request) (Forecast, error) {
	if e.err != nil {
		return Forecast{}, e.err
	}
	return Forecast{Probability: 0.9, Confidence: edge.High}, nil
}

func TestGuardedFallsBack(t *testing.T) {
	g := &Guarded{Provider: errProvider{err: errors.New("upstream down")}, Default: 0.6}

	got, err := g.Forecast(context.Background(), Request{MarketID: "m1"})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !got.Fallback {
		t.Fatal("expected fallback forecast")
	}
	if !almostEqual(got.Probability, 0.6) || got.Confidence != edge.Low {
		t.Fatalf("got=%+v want probability=0.6 confidence=LOW", got)
	}
	if !strings.Contains(got.Rationale, "upstream down") {
		t.Fatalf("rationale=%q want the provider error named", got.Rationale)
	}
}

func TestGuardedPassesThrough(t *testing.T) {
	g := &Guarded{Provider: errProvider{}}
	got, err := g.Forecast(context.Background(), Request{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got.Fallback || !almostEqual(got.Probability, 0.9) {
		t.Fatalf("got=%+v want pass-through 0.9", got)
	}
}
