package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/animate/gemini"
	"animate-prompt/api/internal/animate/openai"
	"animate-prompt/api/internal/config"
	"animate-prompt/api/internal/prompt"
	"animate-prompt/api/internal/util"
)

var (
	analyzeEngine string
	analyzeModel  string
	analyzeKey    string
	analyzeMIME   string
)

// newEngines is replaced in tests.
var newEngines = func(cfg *config.Config) *animate.Engines {
	return &animate.Engines{
		Gemini:  gemini.New(cfg.GeminiModel, cfg.GeminiEndpoint),
		OpenAI:  openai.New(cfg.OpenAIModel),
		Default: cfg.DefaultEngine,
	}
}

// stdin is the terminal a missing key is read from.
var stdin = os.Stdin

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Generate an animation prompt for an image",
	Long: `Send an image to a vision model and print the returned animation prompt.

The key comes from --api-key, then GEMINI_API_KEY / OPENAI_API_KEY (or the
CONFIG_FILE). When none is set and stdin is a terminal, it is asked for.

Examples:
  animate-cli analyze cat.jpg
  animate-cli analyze cat.jpg --detail 5 --anime --natural
  animate-cli analyze cat.png --engine gpt --model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addPromptFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeEngine, "engine", "", "Engine: gemini, gpt (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Model override")
	analyzeCmd.Flags().StringVar(&analyzeKey, "api-key", "", "API key (prompted when missing)")
	analyzeCmd.Flags().StringVar(&analyzeMIME, "mime", "", "Image MIME type (detected when empty)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	img, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	mime := util.PickMIME(analyzeMIME, "", img)
	if !util.IsImageMIME(mime) {
		return fmt.Errorf("%s is not an image (%s)", args[0], mime)
	}

	cfg, err := config.LoadFrom(os.Getenv("CONFIG_FILE"), os.Getenv)
	if err != nil {
		return err
	}
	eng, err := newEngines(cfg).GetEngine(analyzeEngine)
	if err != nil {
		return err
	}

	key := analyzeKey
	if strings.TrimSpace(key) == "" {
		key = cfg.APIKey(eng.Name())
	}
	if missingKey(key) && term.IsTerminal(int(stdin.Fd())) {
		key, err = readKey(cmd.ErrOrStderr(), eng.Name(), func() ([]byte, error) {
			return term.ReadPassword(int(stdin.Fd()))
		})
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	text, err := animate.NewAnalyzer(eng).Analyze(ctx, animate.Request{
		Image:  img,
		MIME:   mime,
		Detail: prompt.DetailLevel(detailLevel),
		Style:  styleFromFlags(),
		APIKey: key,
		Model:  analyzeModel,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

func missingKey(k string) bool {
	k = strings.TrimSpace(k)
	return k == "" || k == animate.MissingKey
}

// readKey prompts on w and reads a key without echo.
func readKey(w io.Writer, engine string, read func() ([]byte, error)) (string, error) {
	fmt.Fprintf(w, "%s API key: ", engine)
	b, err := read()
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

