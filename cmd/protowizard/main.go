package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mbsoft31/protocol-wizard/config"
	"github.com/mbsoft31/protocol-wizard/llm"
	anthropicclient "github.com/mbsoft31/protocol-wizard/llm/anthropic"
	geminiclient "github.com/mbsoft31/protocol-wizard/llm/gemini"
	ollamaclient "github.com/mbsoft31/protocol-wizard/llm/ollama"
	openaiclient "github.com/mbsoft31/protocol-wizard/llm/openai"
	pwlogger "github.com/mbsoft31/protocol-wizard/logger"
	"github.com/mbsoft31/protocol-wizard/prompts"
	"github.com/mbsoft31/protocol-wizard/protocol"
	"github.com/mbsoft31/protocol-wizard/wizard"
)

const usage = `Protocol Wizard: draft -> refine -> freeze (HIL friendly)

Usage:
  protowizard draft   -subject <file> [-outdir outputs] [-model provider:name]
  protowizard refine  [-protocol outputs/protocol_draft.json] [-outdir outputs] [-model provider:name]
  protowizard queries [-protocol outputs/protocol_draft.json] [-out outputs/queries_draft.jsonl] [-model provider:name]
  protowizard freeze  [-protocol outputs/protocol_draft.json] [-refinements outputs/refinements.json] [-outdir frozen]
  protowizard health
  protowizard schema

Global flags (before the subcommand):
  -logfile <path>  Log to a file instead of stdout
  -pretty          Pretty console log output (only valid without -logfile)
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		logFile = flag.String("logfile", "", "Path to log file. If not set, logs to stdout/stderr")
		pretty  = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("a subcommand is required")
	}

	logger, err := pwlogger.InitWithOptions(*logFile, *pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load(config.GetConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svc := buildService(cfg, logger)

	switch cmd, rest := args[0], args[1:]; cmd {
	case "draft":
		return cmdDraft(svc, rest)
	case "refine":
		return cmdRefine(svc, rest)
	case "queries":
		return cmdQueries(svc, rest)
	case "freeze":
		return cmdFreeze(svc, rest)
	case "health":
		return cmdHealth(svc)
	case "schema":
		return cmdSchema()
	default:
		flag.Usage()
		return fmt.Errorf("unknown subcommand %q", cmd)
	}
}

// buildService wires the provider clients, gateway, and wizard service from
// resolved configuration. Providers whose clients fail to construct (usually
// a missing credential) are simply left out; the gateway degrades to
// fallbacks for them.
func buildService(cfg *config.Config, logger zerolog.Logger) *wizard.Service {
	providerCfg := cfg.ProviderConfig()
	registry := llm.NewProviderRegistry(&providerCfg, cfg.Providers)

	clients := make(map[string]llm.Client)
	if c, err := openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.Organization); err == nil {
		clients[llm.ProviderOpenAI] = c
	}
	if c, err := geminiclient.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Endpoint, cfg.Gemini.Model); err == nil {
		clients[llm.ProviderGemini] = c
	}
	if c, err := anthropicclient.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model); err == nil {
		clients[llm.ProviderAnthropic] = c
	}
	if c, err := ollamaclient.NewClient(cfg.Ollama.Host, cfg.Ollama.Model); err == nil {
		clients[llm.ProviderOllama] = c
	}

	gateway := llm.NewGateway(registry, clients, cfg.LLMDefaults(), logger)
	library := prompts.NewLibrary(cfg.PromptsDir)
	return wizard.NewService(gateway, library, cfg.DefaultModel, logger)
}

func cmdDraft(svc *wizard.Service, args []string) error {
	fs := flag.NewFlagSet("draft", flag.ExitOnError)
	subjectFile := fs.String("subject", "", "Path to subject description .txt")
	outdir := fs.String("outdir", "outputs", "Directory to write drafts")
	model := fs.String("model", "", "Model spec (openai:..., gemini:..., anthropic:..., ollama:...)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subjectFile == "" {
		return fmt.Errorf("-subject is required")
	}

	subject, err := os.ReadFile(*subjectFile)
	if err != nil {
		return fmt.Errorf("failed to read subject file: %w", err)
	}

	ctx := context.Background()
	result, err := svc.Draft(ctx, string(subject), *model)
	if err != nil {
		return err
	}

	if result.FromFallback {
		fmt.Println("[WARN] No usable LLM output; wrote fallback draft.")
	}
	if !result.Validation.Valid {
		for _, ve := range result.Validation.Errors {
			fmt.Printf("[WARN] Validation: %s: %s\n", ve.Path, ve.Message)
		}
	}

	draftPath := filepath.Join(*outdir, "protocol_draft.json")
	if err := writeJSON(draftPath, result.Protocol); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(*outdir, "checklist.md"), []byte(result.Checklist)); err != nil {
		return err
	}
	fmt.Printf("[OK] Draft written -> %s\n", draftPath)
	return nil
}

func cmdRefine(svc *wizard.Service, args []string) error {
	fs := flag.NewFlagSet("refine", flag.ExitOnError)
	protocolPath := fs.String("protocol", "outputs/protocol_draft.json", "Draft JSON to refine")
	outdir := fs.String("outdir", "outputs", "Directory for refinements")
	model := fs.String("model", "", "Model spec")
	if err := fs.Parse(args); err != nil {
		return err
	}

	proto, err := readProtocol(*protocolPath)
	if err != nil {
		return err
	}

	result, err := svc.Refine(context.Background(), proto, *model)
	if err != nil {
		return err
	}
	if result.FromFallback {
		fmt.Println("[WARN] No usable LLM output; wrote fallback refinements.")
	}

	refinePath := filepath.Join(*outdir, "refinements.json")
	if err := writeJSON(refinePath, result.Refinements); err != nil {
		return err
	}
	fmt.Printf("[OK] Refinements written -> %s\n", refinePath)
	return nil
}

func cmdQueries(svc *wizard.Service, args []string) error {
	fs := flag.NewFlagSet("queries", flag.ExitOnError)
	protocolPath := fs.String("protocol", "outputs/protocol_draft.json", "Protocol JSON")
	outPath := fs.String("out", "outputs/queries_draft.jsonl", "Native JSONL for fetch stage")
	model := fs.String("model", "", "Model spec")
	if err := fs.Parse(args); err != nil {
		return err
	}

	proto, err := readProtocol(*protocolPath)
	if err != nil {
		return err
	}

	result, err := svc.Queries(context.Background(), proto, *model)
	if err != nil {
		return err
	}
	if result.FromFallback {
		fmt.Println("[WARN] No usable query candidates from LLM.")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, q := range result.Queries {
		if err := enc.Encode(q); err != nil {
			return fmt.Errorf("failed to encode query: %w", err)
		}
	}
	if err := writeFile(*outPath, buf.Bytes()); err != nil {
		return err
	}
	fmt.Printf("[OK] Query candidates -> %s\n", *outPath)
	return nil
}

func cmdFreeze(svc *wizard.Service, args []string) error {
	fs := flag.NewFlagSet("freeze", flag.ExitOnError)
	protocolPath := fs.String("protocol", "outputs/protocol_draft.json", "Protocol JSON to freeze")
	refinementsPath := fs.String("refinements", "outputs/refinements.json", "Refinements JSON (optional)")
	outdir := fs.String("outdir", "frozen", "Directory for the frozen protocol")
	if err := fs.Parse(args); err != nil {
		return err
	}

	doc, err := readDocument(*protocolPath)
	if err != nil {
		return err
	}

	sourceFiles := []string{*protocolPath}
	var refinements *protocol.Refinements
	if data, err := os.ReadFile(*refinementsPath); err == nil {
		var ref protocol.Refinements
		if err := json.Unmarshal(data, &ref); err != nil {
			return fmt.Errorf("failed to parse refinements %q: %w", *refinementsPath, err)
		}
		refinements = &ref
		sourceFiles = append(sourceFiles, *refinementsPath)
	}

	result, err := svc.Freeze(doc, refinements, sourceFiles)
	if err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(*outdir, "protocol.json"), result.Protocol); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(*outdir, "manifest.json"), result.Manifest); err != nil {
		return err
	}
	fmt.Printf("[OK] Protocol frozen -> %s (sha256=%s...)\n",
		filepath.Join(*outdir, "protocol.json"), result.Manifest.ProtocolSHA256[:12])
	return nil
}

func cmdHealth(svc *wizard.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	health := svc.Health(ctx)
	if len(health) == 0 {
		fmt.Println("No providers configured.")
		return nil
	}

	providers := make([]string, 0, len(health))
	for p := range health {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	for _, p := range providers {
		status := "unavailable"
		if health[p] {
			status = "ok"
		}
		fmt.Printf("%-10s %s\n", p, status)
	}
	return nil
}

func cmdSchema() error {
	data, err := protocol.SchemaJSON()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func readProtocol(path string) (*protocol.Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol %q: %w", path, err)
	}
	var proto protocol.Protocol
	if err := json.Unmarshal(data, &proto); err != nil {
		return nil, fmt.Errorf("failed to parse protocol %q: %w", path, err)
	}
	return &proto, nil
}

func readDocument(path string) (protocol.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol %q: %w", path, err)
	}
	var doc protocol.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse protocol %q: %w", path, err)
	}
	return doc, nil
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %q: %w", path, err)
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
