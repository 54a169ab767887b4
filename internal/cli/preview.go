// internal/cli/preview.go
package winnow

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/winnow/internal/logging"
)

// previewCmd serves a built bundle over HTTP so it can be reviewed in a
// browser before it is published.
var previewCmd = &cobra.Command{
	Use:   "preview [bundle]",
	Short: "Serve a built bundle over HTTP for local review",
	Long: `Serve the bundle directory as static files on a local address. Responses
are sent with caching disabled so a rebuilt bundle shows up on reload
without a hard refresh.

The bundle defaults to the configured output directory when omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := activeConfig()
		dir := cfg.OutputDirPath()
		if len(args) > 0 {
			dir = args[0]
		}

		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("unable to open bundle directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("bundle path is not a directory: %s", dir)
		}

		addr := cfg.PreviewAddr()
		cmd.Printf("Serving %s on http://localhost%s (Ctrl+C to stop)\n", dir, addr)
		logging.LogEvent("Preview started: dir=%s addr=%s", dir, addr)

		return http.ListenAndServe(addr, newPreviewHandler(dir))
	},
}

func init() {
	previewCmd.Flags().String("addr", ":8374", "Address to serve the bundle on")
	_ = viper.BindPFlag("addr", previewCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(previewCmd)
}

// newPreviewHandler builds the file-serving handler for a bundle
// directory.
func newPreviewHandler(dir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(noCache)
	r.Handle("/*", http.FileServer(http.Dir(dir)))
	return r
}

// noCache disables response caching so reloads always see the current
// bundle contents.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		logging.LogEvent("Preview request: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
