// Command toolcodec renders tool catalogs, expands chat requests into the
// sentinel message stream, and extracts tool calls from model output.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skosovsky/toolcodec"
)

// Set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type app struct {
	configPath string
	logLevel   string
	cfg        *Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "toolcodec",
		Short:         "Text protocol codec for tool-calling models",
		Long:          "toolcodec converts OpenAI-style tool requests into the starttoolcall/endtoolcall text protocol and back.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(catalogCmd(), expandCmd(a), extractCmd(a), versionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	lvl, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	return nil
}

// ── catalog command ──

func catalogCmd() *cobra.Command {
	var namesOut string
	cmd := &cobra.Command{
		Use:   "catalog [tools.json]",
		Short: "Render tool definitions as the system prompt catalog",
		Long:  "Reads a JSON array of tool definitions (flat or {\"type\":\"function\",\"function\":{...}}) from a file or stdin and prints the catalog text.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var tools []toolcodec.ToolDefinition
			if err := json.Unmarshal(data, &tools); err != nil {
				return fmt.Errorf("decoding tools: %w", err)
			}
			cat := toolcodec.FormatCatalog(tools)
			if _, err := io.WriteString(cmd.OutOrStdout(), cat.Text); err != nil {
				return err
			}
			if namesOut != "" {
				return writeJSONFile(namesOut, cat.Names)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&namesOut, "names-out", "", "write the sanitized name map as JSON to this file")
	return cmd
}

// ── expand command ──

func expandCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expand [request.json]",
		Short: "Flatten a chat request into the sentinel message stream",
		Long:  "Reads a chat completion request ({\"messages\":[...],\"tools\":[...]}) and prints {\"messages\":[...],\"names\":{...}}.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var req toolcodec.Request
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("decoding request: %w", err)
			}
			tr := toolcodec.NewTransformer(a.options()...)
			return writeJSON(cmd.OutOrStdout(), tr.Encode(cmd.Context(), req))
		},
	}
}

// ── extract command ──

func extractCmd(a *app) *cobra.Command {
	var namesIn string
	cmd := &cobra.Command{
		Use:   "extract [output.txt]",
		Short: "Extract tool calls from raw model output",
		Long:  "Reads raw generated text and prints the decoded tool calls as a JSON array.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var names toolcodec.NameMap
			if namesIn != "" {
				raw, err := os.ReadFile(namesIn)
				if err != nil {
					return fmt.Errorf("reading name map: %w", err)
				}
				if err := json.Unmarshal(raw, &names); err != nil {
					return fmt.Errorf("decoding name map: %w", err)
				}
			}
			opts := append(a.options(), toolcodec.WithOnDrop(func(ctx context.Context, err error) {
				a.logger.DebugContext(ctx, "dropped", "error", err)
			}))
			calls := toolcodec.NewTransformer(opts...).Decode(cmd.Context(), string(data), names)
			if calls == nil {
				calls = []toolcodec.ToolCall{}
			}
			return writeJSON(cmd.OutOrStdout(), calls)
		},
	}
	cmd.Flags().StringVar(&namesIn, "names", "", "JSON name map (from catalog --names-out) used to restore original tool names")
	return cmd
}

// ── version command ──

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "toolcodec %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func (a *app) options() []toolcodec.Option {
	return a.cfg.Options(a.logger)
}

// readInput reads the file named by args[0], or stdin when no file or "-" is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
