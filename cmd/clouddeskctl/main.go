// clouddeskctl 是管理端命令行工具，直接访问 clouddesk 的 HTTP API
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jimmicro/version"
	"github.com/spf13/cobra"
)

var (
	serverAddr string
	ownerID    string
)

func main() {
	root := &cobra.Command{
		Use:   "clouddeskctl",
		Short: "Admin CLI for the clouddesk API",
	}
	root.PersistentFlags().StringVar(&serverAddr, "server", "http://127.0.0.1:7780", "clouddesk API address")
	root.PersistentFlags().StringVar(&ownerID, "owner", "", "owner identity sent as X-Owner-ID")

	root.AddCommand(newDesktopsCommand())
	root.AddCommand(newBackupsCommand())
	root.AddCommand(newUsageCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDesktopsCommand() *cobra.Command {
	var status string

	desktops := &cobra.Command{
		Use:   "desktops",
		Short: "Manage remote desktops",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List desktops",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/api/desktops"
			if status != "" {
				path += "?status=" + status
			}
			return call(cmd, http.MethodGet, path)
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status")

	describe := &cobra.Command{
		Use:   "describe <id>",
		Short: "Describe a desktop, refreshing its status from the provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, http.MethodGet, "/api/desktops/"+args[0])
		},
	}

	start := &cobra.Command{
		Use:   "start <id>",
		Short: "Start a stopped desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, http.MethodPost, "/api/desktops/"+args[0]+"/start")
		},
	}

	stop := &cobra.Command{
		Use:   "stop <id>",
		Short: "Stop a running desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, http.MethodPost, "/api/desktops/"+args[0]+"/stop")
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a desktop, the billing record is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, http.MethodDelete, "/api/desktops/"+args[0])
		},
	}

	desktops.AddCommand(list, describe, start, stop, del)
	return desktops
}

func newBackupsCommand() *cobra.Command {
	backups := &cobra.Command{
		Use:   "backups",
		Short: "Manage desktop backups",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List backups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return call(cmd, http.MethodGet, "/api/backups")
		},
	}

	describe := &cobra.Command{
		Use:   "describe <id>",
		Short: "Describe a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, http.MethodGet, "/api/backups/"+args[0])
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, http.MethodDelete, "/api/backups/"+args[0])
		},
	}

	backups.AddCommand(list, describe, del)
	return backups
}

func newUsageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "usage [owner_id]",
		Short: "Report the cost summary for an owner",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/usage"
			if len(args) == 1 {
				path += "/" + args[0]
			}
			return call(cmd, http.MethodGet, path)
		},
	}
}

// call 请求 API 并把响应体原样美化输出
func call(cmd *cobra.Command, method, path string) error {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(cmd.Context(), method, strings.TrimRight(serverAddr, "/")+path, nil)
	if err != nil {
		return err
	}
	if ownerID != "" {
		req.Header.Set("X-Owner-ID", ownerID)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty map[string]interface{}
	if len(body) > 0 && json.Unmarshal(body, &pretty) == nil {
		out, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			return err
		}
		body = out
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(body))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return nil
}
