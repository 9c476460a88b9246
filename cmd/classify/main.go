package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liamcoop/numclass/funfact"
	"github.com/liamcoop/numclass/internal/config"
	"github.com/liamcoop/numclass/internal/logger"
	"github.com/liamcoop/numclass/numbers"
	"github.com/liamcoop/numclass/rules"
)

// errInvalidInput is returned when at least one argument failed to parse
var errInvalidInput = errors.New("one or more inputs could not be classified")

type lineError struct {
	Error  string `json:"error"`
	Number string `json:"number"`
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify NUMBER...",
		Short: "Classify numbers from the command line",
		Long: "classify prints one JSON classification record per argument, using the same\n" +
			"property policy and fun fact rules as the HTTP server.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args)
		},
	}

	cmd.Flags().String("config", "", "Path to YAML config file")
	cmd.Flags().Bool("fetch", false, "Look up fun facts from the configured numbers API")
	cmd.Flags().String("policy", "", "Property policy engine (cel or standard), overrides config")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if p, _ := cmd.Flags().GetString("policy"); p != "" {
		cfg.Policy.Engine = strings.ToLower(p)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	policy, _, err := rules.PolicyFromConfig(cfg.Policy)
	if err != nil {
		return err
	}
	classifier := numbers.NewClassifier(numbers.WithPolicy(policy))

	var resolver *funfact.Resolver
	if fetch, _ := cmd.Flags().GetBool("fetch"); fetch {
		resolver = funfact.NewResolver(funfact.NewNumbersAPI(cfg.FunFact.BaseURL, cfg.FunFact.Timeout), cfg.FunFact.Timeout)
	}

	return classifyAll(cmd.Context(), cmd.OutOrStdout(), classifier, resolver, args)
}

// classifyAll writes one JSON line per argument. Unparsable arguments produce
// an error line and make the whole run fail after every argument is printed.
func classifyAll(ctx context.Context, w io.Writer, c *numbers.Classifier, facts *funfact.Resolver, args []string) error {
	enc := json.NewEncoder(w)
	failed := false

	for _, raw := range args {
		n, err := numbers.Parse(raw)
		if err != nil {
			failed = true
			msg := "Invalid input - non-numeric value"
			if errors.Is(err, numbers.ErrMissingInput) {
				msg = "Number parameter is missing"
			}
			if err := enc.Encode(lineError{Error: msg, Number: raw}); err != nil {
				return err
			}
			continue
		}

		fact := ""
		if facts != nil {
			fact, err = facts.Resolve(ctx, n)
			if err != nil && !errors.Is(err, funfact.ErrNotInteger) {
				logger.Debug("fun fact lookup failed, using fallback", "number", raw, "error", err)
			}
		}

		if err := enc.Encode(c.Classify(n, fact)); err != nil {
			return err
		}
	}

	if failed {
		return errInvalidInput
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
