package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const loadTimeout = 5 * time.Minute

var (
	loadServer string
	loadAPIKey string
)

var loadCmd = &cobra.Command{
	Use:   "load <file|dir>...",
	Short: "Send local text files to a running server",
	Long: `Reads text files (directories are walked for .txt and .md) and posts them
to POST /api/documents/load on a running ragrouter server.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&loadServer, "server", "s", "http://localhost:8080", "server base URL")
	loadCmd.Flags().StringVar(&loadAPIKey, "api-key", "", "bearer API key")
	rootCmd.AddCommand(loadCmd)
}

type loadRequest struct {
	Texts    []string         `json:"texts"`
	Metadata []map[string]any `json:"metadata"`
}

type loadResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Total   int    `json:"total"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

func runLoad(cmd *cobra.Command, args []string) error {
	texts, metadata, err := readDocuments(args)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no non-empty documents found in %s", strings.Join(args, ", "))
	}

	res, err := postDocuments(cmd, &http.Client{Timeout: loadTimeout}, loadServer, loadAPIKey, texts, metadata)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cmd.Printf("%s %s (total: %d)\n", green("✓"), res.Message, res.Total)
	return nil
}

func postDocuments(
	cmd *cobra.Command, hc *http.Client, server, apiKey string,
	texts []string, metadata []map[string]any,
) (loadResult, error) {
	body, err := json.Marshal(loadRequest{Texts: texts, Metadata: metadata})
	if err != nil {
		return loadResult{}, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(server, "/") + "/api/documents/load"
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return loadResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return loadResult{}, fmt.Errorf("post documents: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return loadResult{}, fmt.Errorf("read response: %w", err)
	}

	var res loadResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return loadResult{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode != http.StatusOK {
		msg := res.Error
		if res.Details != "" {
			msg += ": " + res.Details
		}
		return loadResult{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}
	return res, nil
}
