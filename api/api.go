package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"

	"github.com/trueside/fantoken/jsonx"
	"github.com/trueside/fantoken/logx"
	"github.com/trueside/fantoken/service"
	"github.com/trueside/fantoken/types"
	"github.com/trueside/fantoken/utils"
)

// LedgerReader is the read side of the ledger served over HTTP.
type LedgerReader interface {
	Account(addr types.Address) *types.Account
	TotalSupply() *uint256.Int
	Status() service.Status
}

type AccountResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Staked  string `json:"staked"`
}

type AmountResponse struct {
	Address string `json:"address,omitempty"`
	Amount  string `json:"amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// APIServer exposes read-only ledger queries. Mutations go through OpsServer.
type APIServer struct {
	reader     LedgerReader
	router     *mux.Router
	ListenAddr string
	server     *http.Server
}

func NewAPIServer(reader LedgerReader, listenAddr string) *APIServer {
	s := &APIServer{
		reader:     reader,
		router:     mux.NewRouter(),
		ListenAddr: listenAddr,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              listenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *APIServer) setupRoutes() {
	s.router.HandleFunc("/accounts/{address}", s.getAccount).Methods(http.MethodGet)
	s.router.HandleFunc("/accounts/{address}/balance", s.getBalance).Methods(http.MethodGet)
	s.router.HandleFunc("/accounts/{address}/staked", s.getStaked).Methods(http.MethodGet)

	s.router.HandleFunc("/supply", s.getSupply).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
}

// GetRouter returns the configured router
func (s *APIServer) GetRouter() *mux.Router {
	return s.router
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *APIServer) ListenAndServe() error {
	logx.Info("API", "API listen on "+s.ListenAddr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server. Calling it before ListenAndServe makes the later ListenAndServe return immediately.
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *APIServer) getAccount(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressVar(w, r)
	if !ok {
		return
	}
	acc := s.reader.Account(addr)
	writeJSON(w, http.StatusOK, AccountResponse{
		Address: acc.Address.String(),
		Balance: utils.Uint256ToString(acc.Balance),
		Staked:  utils.Uint256ToString(acc.Staked),
	})
}

func (s *APIServer) getBalance(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressVar(w, r)
	if !ok {
		return
	}
	acc := s.reader.Account(addr)
	writeJSON(w, http.StatusOK, AmountResponse{Address: addr.String(), Amount: utils.Uint256ToString(acc.Balance)})
}

func (s *APIServer) getStaked(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressVar(w, r)
	if !ok {
		return
	}
	acc := s.reader.Account(addr)
	writeJSON(w, http.StatusOK, AmountResponse{Address: addr.String(), Amount: utils.Uint256ToString(acc.Staked)})
}

func (s *APIServer) getSupply(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AmountResponse{Amount: utils.Uint256ToString(s.reader.TotalSupply())})
}

func (s *APIServer) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reader.Status())
}

func addressVar(w http.ResponseWriter, r *http.Request) (types.Address, bool) {
	addr := strings.TrimSpace(mux.Vars(r)["address"])
	if addr == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "address is required"})
		return "", false
	}
	return types.Address(addr), true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonx.NewEncoder(w).Encode(data); err != nil {
		logx.Error("API", "Failed to encode JSON response: ", err)
	}
}
