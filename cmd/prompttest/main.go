package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"resume-analyzer/internal/bootstrap"
	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/telemetry"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	resume   string
	jd       string
	provider string
	model    string
	tone     string
	out      string
	letter   bool
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:           "prompttest",
		Short:         "Exercise extraction, prompts and providers without the HTTP server",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.SetOutput(cmd.ErrOrStderr())
		},
	}

	extractCmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text extracted from a PDF or DOCX resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := extractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), f.out, text)
		},
	}

	promptCmd := &cobra.Command{
		Use:   "prompt",
		Short: "Render the analysis prompt, or the cover-letter prompt when --tone is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			resume, jd, err := loadInputs(cmd.Context(), f)
			if err != nil {
				return err
			}
			if f.tone != "" {
				tone, err := llm.ParseTone(f.tone)
				if err != nil {
					return err
				}
				prompt := llm.BuildCoverLetterPrompt(llm.CoverLetterInput{
					ResumeText:     resume,
					JobDescription: jd,
					CompanyName:    llm.DefaultCompanyName,
					Tone:           tone,
				}, llm.CoverLetterFormatInstructions())
				return write(cmd.OutOrStdout(), f.out, prompt)
			}
			return write(cmd.OutOrStdout(), f.out, llm.BuildAnalysisPrompt(resume, jd, llm.FormatInstructions()))
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one analysis against the configured provider and print the validated JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			resume, jd, err := loadInputs(cmd.Context(), f)
			if err != nil {
				return err
			}
			client, err := newClient(cmd.Context(), f)
			if err != nil {
				return err
			}
			result, err := client.Analyze(cmd.Context(), llm.BuildAnalysisPrompt(resume, jd, llm.FormatInstructions()))
			if err != nil {
				return err
			}
			payload, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), f.out, string(payload))
		},
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the output contract JSON schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := llm.AnalysisSchema()
			if f.letter {
				schema = llm.CoverLetterSchema()
			}
			payload, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), f.out, string(payload))
		},
	}

	root.PersistentFlags().StringVarP(&f.out, "out", "o", "", "write output to a file instead of stdout")
	for _, c := range []*cobra.Command{promptCmd, analyzeCmd} {
		c.Flags().StringVar(&f.resume, "resume", "", "resume file (pdf, docx or plain text)")
		c.Flags().StringVar(&f.jd, "jd", "", "job description text file")
		_ = c.MarkFlagRequired("resume")
		_ = c.MarkFlagRequired("jd")
	}
	promptCmd.Flags().StringVar(&f.tone, "tone", "", "render the cover-letter prompt for this tone")
	schemaCmd.Flags().BoolVar(&f.letter, "cover-letter", false, "print the cover-letter regeneration schema")
	analyzeCmd.Flags().StringVar(&f.provider, "provider", "", "override LLM_PROVIDER (openai, gemini)")
	analyzeCmd.Flags().StringVar(&f.model, "model", "", "override LLM_MODEL")

	root.AddCommand(extractCmd, promptCmd, analyzeCmd, schemaCmd)
	return root
}

func newClient(ctx context.Context, f flags) (*llm.Client, error) {
	cfg := config.Load()
	if f.provider != "" {
		cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(f.provider))
	}
	if f.model != "" {
		cfg.LLM.Model = f.model
	}
	// Surface configuration errors instead of silently using the placeholder.
	cfg.Env = "production"
	completer, err := bootstrap.NewCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(completer), nil
}

func loadInputs(ctx context.Context, f flags) (string, string, error) {
	resume, err := extractFile(ctx, f.resume)
	if err != nil {
		return "", "", err
	}
	jd, err := os.ReadFile(f.jd)
	if err != nil {
		return "", "", fmt.Errorf("read job description: %w", err)
	}
	return resume, string(jd), nil
}

func extractFile(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return extract.New("", 0).ExtractUpload(ctx, file, "", filepath.Base(path))
}

func write(stdout io.Writer, path, content string) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content+"\n"), 0o644)
}
