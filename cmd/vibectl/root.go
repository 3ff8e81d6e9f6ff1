package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var baseURL string

var rootCmd = &cobra.Command{
	Use:   "vibectl",
	Short: "Smoke-check client for a running VibeCurator server",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base", "http://localhost:8080", "server base URL")
}

func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)
}

// fetch runs the request and prints the response body. Transport
// failures and HTTP error statuses exit non-zero.
func fetch(req *resty.Request, path string) {
	resp, err := req.Get(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vibectl: request failed: %v\n", err)
		os.Exit(1)
	}
	printJSON(resp.Body())
	if resp.IsError() {
		os.Exit(1)
	}
}

func printJSON(body []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		os.Stdout.Write(body)
		fmt.Println()
		return
	}
	fmt.Println(pretty.String())
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}
