package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/andyrak/onkyo-ng/pkg/avr"
	"github.com/andyrak/onkyo-ng/pkg/cli"
	"github.com/andyrak/onkyo-ng/pkg/eiscp"
	"github.com/andyrak/onkyo-ng/pkg/inventory"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "REST API over the receiver inventory",
	Long: `Serve a small REST API backed by the receiver inventory:

  GET  /receivers              list stored receivers
  GET  /receivers/{mac}        one stored receiver
  GET  /receivers/{mac}/names  stored custom names; ?refresh=1 queries live
  POST /receivers/{mac}/command  {"zone","command","value"} sent live
  POST /discover               scan the network and store the results

Example:
  onkyoctl serve --addr :8420`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8420", "listen address")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	store, err := openInventory()
	if err != nil {
		return err
	}
	defer store.Close()

	api := newAPIServer(store, slog.Default())

	srv := &http.Server{
		Addr:    serveAddr,
		Handler: api.router(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		cli.PrintInfo("Serving on %s", serveAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// apiServer holds the handlers' dependencies. The live-receiver calls
// are injectable so handler tests run without a device.
type apiServer struct {
	store *inventory.Store
	log   *slog.Logger

	queryNames func(ctx context.Context, opts avr.Options) avr.NameResult
	discover   func(ctx context.Context, cfg eiscp.DiscoverConfig) ([]eiscp.Device, error)
	sendOne    func(ctx context.Context, opts avr.Options, zone eiscp.Zone, command, value string) error
}

func newAPIServer(store *inventory.Store, log *slog.Logger) *apiServer {
	return &apiServer{
		store: store,
		log:   log,
		queryNames: func(ctx context.Context, opts avr.Options) avr.NameResult {
			return avr.QueryInputNames(ctx, opts)
		},
		discover: eiscp.Discover,
		sendOne:  sendOneCommand,
	}
}

func (s *apiServer) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/receivers", s.handleListReceivers).Methods("GET")
	r.HandleFunc("/receivers/{mac}", s.handleGetReceiver).Methods("GET")
	r.HandleFunc("/receivers/{mac}/names", s.handleNames).Methods("GET")
	r.HandleFunc("/receivers/{mac}/command", s.handleCommand).Methods("POST")
	r.HandleFunc("/discover", s.handleDiscover).Methods("POST")
	return r
}

func (s *apiServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func (s *apiServer) handleListReceivers(w http.ResponseWriter, r *http.Request) {
	receivers, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list: %v", err)
		return
	}
	if receivers == nil {
		receivers = []inventory.Receiver{}
	}
	writeJSON(w, http.StatusOK, receivers)
}

func (s *apiServer) handleGetReceiver(w http.ResponseWriter, r *http.Request) {
	mac := mux.Vars(r)["mac"]
	rec, err := s.store.Get(r.Context(), mac)
	if errors.Is(err, inventory.ErrNotFound) {
		writeError(w, http.StatusNotFound, "receiver %s not found", mac)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// namesResponse is the /names payload: input code to effective custom
// name, with the query status when a live refresh ran.
type namesResponse struct {
	MAC    string            `json:"mac"`
	Names  map[string]string `json:"names"`
	Status string            `json:"status,omitempty"`
}

func (s *apiServer) handleNames(w http.ResponseWriter, r *http.Request) {
	mac := mux.Vars(r)["mac"]
	rec, err := s.store.Get(r.Context(), mac)
	if errors.Is(err, inventory.ErrNotFound) {
		writeError(w, http.StatusNotFound, "receiver %s not found", mac)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get: %v", err)
		return
	}

	resp := namesResponse{MAC: rec.MAC, Names: rec.Names}
	if resp.Names == nil {
		resp.Names = map[string]string{}
	}

	if r.URL.Query().Get("refresh") == "1" {
		result := s.queryNames(r.Context(), avr.Options{Host: rec.Host, Port: rec.Port})
		resp.Status = result.Status.String()
		if result.Status != avr.QueryFailed {
			fresh := make(map[string]string, len(result.Names))
			for in, name := range result.Names {
				fresh[in.Code()] = name
			}
			resp.Names = fresh
			if err := s.store.SetNames(r.Context(), rec.MAC, fresh); err != nil {
				s.log.Warn("serve: store names", "mac", rec.MAC, "err", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// commandRequest is the POST /command payload.
type commandRequest struct {
	Zone    string `json:"zone,omitempty"`
	Command string `json:"command"`
	Value   string `json:"value,omitempty"`
}

func (s *apiServer) handleCommand(w http.ResponseWriter, r *http.Request) {
	mac := mux.Vars(r)["mac"]
	rec, err := s.store.Get(r.Context(), mac)
	if errors.Is(err, inventory.ErrNotFound) {
		writeError(w, http.StatusNotFound, "receiver %s not found", mac)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get: %v", err)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body: %v", err)
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}
	zone := eiscp.ZoneMain
	if req.Zone != "" {
		zone, err = eiscp.ParseZone(req.Zone)
		if err != nil {
			writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
	}
	value := req.Value
	if value == "" {
		value = eiscp.QueryValue
	}

	opts := avr.Options{Host: rec.Host, Port: rec.Port}
	if err := s.sendOne(r.Context(), opts, zone, req.Command, value); err != nil {
		writeError(w, http.StatusBadGateway, "send: %v", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"mac":     rec.MAC,
		"command": req.Command,
		"value":   value,
	})
}

func (s *apiServer) handleDiscover(w http.ResponseWriter, r *http.Request) {
	devices, err := s.discover(r.Context(), eiscp.DiscoverConfig{Logger: s.log})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "discover: %v", err)
		return
	}
	for _, dev := range devices {
		rec := inventory.Receiver{
			MAC:    dev.MAC,
			Model:  dev.Model,
			Host:   dev.Host,
			Port:   dev.Port,
			Region: dev.Region,
		}
		if old, err := s.store.Get(r.Context(), dev.MAC); err == nil {
			rec.Names = old.Names
		}
		if err := s.store.Put(r.Context(), rec); err != nil {
			writeError(w, http.StatusInternalServerError, "store: %v", err)
			return
		}
	}
	if devices == nil {
		devices = []eiscp.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

// sendOneCommand opens a short-lived connection for a single command.
func sendOneCommand(ctx context.Context, opts avr.Options, zone eiscp.Zone, command, value string) error {
	conn, err := eiscp.Connect(ctx, eiscp.Config{Host: opts.Host, Port: opts.Port})
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.Send(ctx, zone, command, value)
}
