// Package main implements the resume_ats CLI: ATS analysis and enhancement of resumes with LLM pipelines.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ats/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "resume_ats",
	Short: "Resume ATS analyzer and enhancer",
	Long: "resume_ats extracts structured data from PDF, DOCX and text resumes, scores their ATS compatibility " +
		"and rewrites them into an ATS-friendly PDF using an LLM.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile string
	v       = config.NewViper()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML, TOML or JSON config file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Verbose/debug logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "JSON format for logging")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider: gemini, vertex or anthropic")

	mustBind("log.debug", "debug")
	mustBind("log.json", "json")
	mustBind("provider", "provider")
}

func mustBind(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding --%s: %v", flag, err))
	}
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
