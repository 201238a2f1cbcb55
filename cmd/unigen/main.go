// Command unigen is a small prompt runner over the unigen library: it
// resolves the model, executes a chat (streamed by default), and prints the
// tokens as they arrive.
//
//	unigen -m gpt-4o-mini "Why is the sky blue?"
//	unigen -m claude-sonnet-4-5 -reasoning high -no-stream "Prove it."
//	unigen -list ollama
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/unigenai/unigen"
	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// .env is optional; environment variables win over it either way.
	if err := godotenv.Load(); err == nil {
		logger.Debug().Msg("loaded .env")
	}

	modelFlag := flag.String("m", "", "model name (optionally namespaced, e.g. openai::gpt-4o)")
	systemFlag := flag.String("s", "", "system instruction")
	reasoningFlag := flag.String("reasoning", "", "reasoning effort: none|minimal|low|medium|high|budget-<n>")
	noStreamFlag := flag.Bool("no-stream", false, "use a unary call instead of streaming")
	listFlag := flag.String("list", "", "list models for an adapter kind (lowercase name) and exit")
	flag.Parse()

	config, err := loadFileConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid config file")
	}

	client := unigen.NewClient()

	if *listFlag != "" {
		listModels(client, logger, *listFlag)
		return
	}

	prompt := flag.Arg(0)
	if prompt == "" {
		logger.Fatal().Msg("usage: unigen -m <model> \"prompt\"")
	}

	model := config.resolveAlias(*modelFlag)
	if model == "" {
		model = config.DefaultModel
	}
	if model == "" {
		logger.Fatal().Msg("no model: pass -m or set default_model in unigen.yaml")
	}

	opts := &chat.ChatOptions{
		Temperature: config.Temperature,
		MaxTokens:   config.MaxTokens,
	}
	if *reasoningFlag != "" {
		effort, err := chat.ParseReasoningEffort(*reasoningFlag)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid -reasoning")
		}
		opts.ReasoningEffort = effort
	}

	req := chat.NewChatRequest(chat.UserMessage(prompt))
	if *systemFlag != "" {
		req = req.WithSystem(*systemFlag)
	}

	ctx := context.Background()

	target, err := client.ResolveServiceTarget(model)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot resolve model")
	}
	logger.Info().
		Str("adapter", target.Model.Kind.String()).
		Str("model", target.Model.Model).
		Msg("resolved")

	if *noStreamFlag {
		res, err := client.ExecChat(ctx, model, req, opts)
		if err != nil {
			logger.Fatal().Err(err).Msg("chat failed")
		}
		fmt.Println(res.FirstText())
		logUsage(logger, res.Usage)
		return
	}

	opts.CaptureUsage = true
	streamRes, err := client.ExecChatStream(ctx, model, req, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("chat stream failed")
	}

	for event, err := range streamRes.Stream.Events() {
		if err != nil {
			logger.Fatal().Err(err).Msg("stream error")
		}
		switch event.Type {
		case chat.StreamEventChunk:
			fmt.Print(event.Content)
		case chat.StreamEventEnd:
			fmt.Println()
			if event.End != nil && event.End.CapturedUsage != nil {
				logUsage(logger, *event.End.CapturedUsage)
			}
		}
	}
}

func listModels(client *unigen.Client, logger zerolog.Logger, lower string) {
	kind, ok := adapter.KindFromLower(lower)
	if !ok {
		logger.Fatal().Str("kind", lower).Msg("unknown adapter kind")
	}
	names, err := client.AllModelNames(context.Background(), kind)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot list models")
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func logUsage(logger zerolog.Logger, usage chat.Usage) {
	logger.Info().
		Int32("prompt_tokens", chat.CountOr(usage.PromptTokens, 0)).
		Int32("completion_tokens", chat.CountOr(usage.CompletionTokens, 0)).
		Int32("total_tokens", chat.CountOr(usage.TotalTokens, 0)).
		Msg("usage")
}
