package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/animate/gemini"
	"animate-prompt/api/internal/config"
	"animate-prompt/api/internal/prompt"
)

type stubEngine struct {
	text  string
	calls int
	last  animate.Input
}

func (s *stubEngine) Name() string     { return "gemini" }
func (s *stubEngine) GetModel() string { return "stub" }
func (s *stubEngine) Generate(_ context.Context, in animate.Input) (string, error) {
	s.calls++
	s.last = in
	return s.text, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func resetFlags() {
	detailLevel = int(prompt.DefaultDetail)
	style3D, styleNatural, styleAnime, styleGreen = false, false, false, false
	analyzeEngine, analyzeModel, analyzeKey, analyzeMIME = "", "", "", ""
	optionsJSON = false
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, &out
}

func withStub(t *testing.T, eng *stubEngine) {
	t.Helper()
	prev := newEngines
	newEngines = func(*config.Config) *animate.Engines { return &animate.Engines{Gemini: eng} }
	t.Cleanup(func() { newEngines = prev })

	// not a terminal, so a missing key is never prompted for
	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	prevIn := stdin
	stdin = f
	t.Cleanup(func() { stdin = prevIn; f.Close() })

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("GEMINI_API_KEY", "")
}

func writeImage(t *testing.T, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "img")
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}
	return p
}

func TestInstructionCommand(t *testing.T) {
	resetFlags()
	detailLevel, styleAnime = 5, true
	cmd, out := newTestCmd()
	if err := runInstruction(cmd, nil); err != nil {
		t.Fatalf("runInstruction() error = %v", err)
	}
	want := prompt.Instruction(5, prompt.StyleFlags{Anime: true}) + "\n"
	if out.String() != want {
		t.Errorf("instruction output mismatch:\n%s", out)
	}
}

func TestOptionsCommand(t *testing.T) {
	resetFlags()
	cmd, out := newTestCmd()
	if err := runOptions(cmd, nil); err != nil {
		t.Fatalf("runOptions() error = %v", err)
	}
	for _, s := range []string{"Moderate (Kling AI) (default)", "--green-screen", "--3d"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("options output missing %q:\n%s", s, out)
		}
	}

	optionsJSON = true
	cmd, out = newTestCmd()
	if err := runOptions(cmd, nil); err != nil {
		t.Fatalf("runOptions(json) error = %v", err)
	}
	var got struct {
		Default int               `json:"default_detail"`
		Levels  []json.RawMessage `json:"levels"`
		Styles  []json.RawMessage `json:"styles"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Default != 3 || len(got.Levels) != 5 || len(got.Styles) != 4 {
		t.Errorf("options JSON = %+v", got)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	resetFlags()
	eng := &stubEngine{text: "  animate this image the cat blinks  "}
	withStub(t, eng)
	detailLevel, styleGreen, analyzeKey = 4, true, "user-key"

	cmd, out := newTestCmd()
	if err := runAnalyze(cmd, []string{writeImage(t, pngHeader)}); err != nil {
		t.Fatalf("runAnalyze() error = %v", err)
	}
	if out.String() != "animate this image the cat blinks\n" {
		t.Errorf("output = %q", out)
	}
	if eng.last.MIME != "image/png" || eng.last.APIKey != "user-key" {
		t.Errorf("engine input = %+v", eng.last)
	}
	if eng.last.Instruction != prompt.Instruction(4, prompt.StyleFlags{GreenScreen: true}) {
		t.Errorf("unexpected instruction sent")
	}
}

func TestAnalyzeMissingKey(t *testing.T) {
	resetFlags()
	eng := &stubEngine{text: "x"}
	withStub(t, eng)

	cmd, _ := newTestCmd()
	err := runAnalyze(cmd, []string{writeImage(t, pngHeader)})
	if !errors.Is(err, animate.ErrCredential) {
		t.Fatalf("err = %v, want credential error", err)
	}
	if eng.calls != 0 {
		t.Errorf("engine called %d times without a key", eng.calls)
	}
}

func TestAnalyzeRejectsNonImage(t *testing.T) {
	resetFlags()
	eng := &stubEngine{text: "x"}
	withStub(t, eng)
	analyzeKey = "k"

	cmd, _ := newTestCmd()
	if err := runAnalyze(cmd, []string{writeImage(t, []byte("just some text"))}); err == nil {
		t.Fatal("expected error for a text file")
	}
	if eng.calls != 0 {
		t.Errorf("engine should not be called")
	}
}

func TestEnginesFromConfig(t *testing.T) {
	engs := newEngines(&config.Config{GeminiModel: "gemini-2.5-flash", GeminiEndpoint: "gemini.internal:443", DefaultEngine: "gpt"})
	g, ok := engs.Gemini.(*gemini.Engine)
	if !ok || g.Endpoint != "gemini.internal:443" {
		t.Errorf("gemini engine = %#v", engs.Gemini)
	}
	if engs.Default != "gpt" || engs.OpenAI == nil {
		t.Errorf("engines = %+v", engs)
	}
}

func TestReadKey(t *testing.T) {
	var w bytes.Buffer
	k, err := readKey(&w, "gemini", func() ([]byte, error) { return []byte(" secret \n"), nil })
	if err != nil || k != "secret" {
		t.Errorf("readKey = %q, %v", k, err)
	}
	if !strings.Contains(w.String(), "gemini API key") {
		t.Errorf("prompt = %q", w.String())
	}
	if _, err := readKey(&w, "gpt", func() ([]byte, error) { return nil, errors.New("eof") }); err == nil {
		t.Error("expected read error")
	}
}
