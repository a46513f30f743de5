package cli

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"cashloan/internal/backend"
	"cashloan/internal/listview"

	"github.com/spf13/cobra"
)

// newExportCmd downloads the gateway's XLSX/PDF rendition of a list. The
// query flags are the list command's.
func newExportCmd(name, path string, params listview.ParamNames, filterKeys ...string) *cobra.Command {
	flags := newListFlags(filterKeys...)
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export " + name + " to XLSX or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "xlsx" && format != "pdf" {
				return fmt.Errorf("invalid format %q, use xlsx or pdf", format)
			}
			client, store, token, err := getAuthedClient()
			if err != nil {
				return err
			}
			q, err := flags.query(listview.NewQuery(listview.MaxPageSize))
			if err != nil {
				return err
			}
			values := q.Values(params)
			// filters the endpoint does not take natively are read by the export handler
			for _, k := range filterKeys {
				if _, ok := params.Filters[k]; !ok && q.Filter(k) != "" {
					values.Set(k, q.Filter(k))
				}
			}
			values.Set("format", format)

			resp, err := client.Do(commandContext(cmd), backend.Request{
				Method: http.MethodGet,
				Path:   path,
				Token:  token,
				Query:  values,
			})
			if err != nil {
				return handleAPIError(store, err)
			}
			if err := resp.Err(); err != nil {
				return handleAPIError(store, err)
			}

			target := output
			if target == "" {
				target = attachmentName(resp.Header.Get("Content-Disposition"), name+"."+format)
			}
			if err := os.WriteFile(target, resp.Body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", target, len(resp.Body))
			return nil
		},
	}
	flags.bind(cmd, false)
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "Export format (xlsx|pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: server-suggested name)")
	return cmd
}

// attachmentName reads the filename from a Content-Disposition header. Only
// the base name is kept.
func attachmentName(header, fallback string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	name := filepath.Base(strings.TrimSpace(params["filename"]))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fallback
	}
	return name
}
