package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	routeruc "github.com/kailas-cloud/ragrouter/internal/usecase/router"
)

var (
	askFiles []string
	askJSON  bool
	askTrace bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer questions in-process",
	Long: `Loads the configured seed files plus any --file arguments into an in-memory
store and answers the question. Without a question argument, reads questions
from stdin until "exit" or EOF.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askFiles, "file", "f", nil, "text file or directory to load (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full routed response as JSON")
	askCmd.Flags().BoolVar(&askTrace, "trace", false, "print each tool result")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	paths := append(append([]string{}, cfg.SeedFiles...), askFiles...)
	if err := seed(ctx, a, paths, logger); err != nil {
		return err
	}

	if len(args) == 1 {
		return printAnswer(cmd.OutOrStdout(), a.agent.Query(ctx, args[0]))
	}
	return askLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a.agent)
}

type querier interface {
	Query(ctx context.Context, query string) routeruc.Response
}

// askLoop answers one question per input line.
func askLoop(ctx context.Context, in io.Reader, out io.Writer, agent querier) error {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintln(out, boldGreen("Router Agent RAG"))
	fmt.Fprintln(out, `Type a question and press Enter. Type "exit" to quit.`)
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, boldGreen("質問: "))
		if !scanner.Scan() {
			break
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if strings.EqualFold(q, "exit") {
			break
		}

		if err := printAnswer(out, agent.Query(ctx, q)); err != nil {
			return err
		}
		fmt.Fprintln(out)

		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func printAnswer(out io.Writer, resp routeruc.Response) error {
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if !resp.Success {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(out, "%s %s\n", red("エラー:"), resp.Error)
		return nil
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	tools := make([]string, len(resp.ToolsUsed))
	for i, t := range resp.ToolsUsed {
		tools[i] = string(t)
	}
	fmt.Fprintf(out, "%s %s\n", faint("intent:"), resp.Intent)
	fmt.Fprintf(out, "%s %s\n", faint("tools: "), strings.Join(tools, ", "))

	if askTrace {
		for _, inv := range resp.ToolResults {
			status := "ok"
			if !inv.Result.Success {
				status = "failed: " + inv.Result.Message
			}
			fmt.Fprintf(out, "%s %s (%s, %d documents)\n", faint("  -"), inv.Tool, status, len(inv.Result.Documents))
		}
	}

	fmt.Fprintf(out, "%s\n%s\n", cyan("回答:"), resp.Answer)
	return nil
}
