package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"

	lerrors "github.com/trueside/fantoken/errors"
	"github.com/trueside/fantoken/jsonx"
	"github.com/trueside/fantoken/logx"
	"github.com/trueside/fantoken/service"
	"github.com/trueside/fantoken/types"
	"github.com/trueside/fantoken/utils"
)

// ErrInvalidRequest marks an operation request that never reached the ledger.
var ErrInvalidRequest = errors.New("invalid operation request")

// LedgerWriter is the mutating side of the ledger.
type LedgerWriter interface {
	SetPaused(caller types.Address, pause bool) (*service.Result, error)
	Mint(caller, recipient types.Address, amount *uint256.Int) (*service.Result, error)
	Transfer(caller, recipient types.Address, amount *uint256.Int) (*service.Result, error)
	Burn(caller types.Address, amount *uint256.Int) (*service.Result, error)
	Stake(caller types.Address, amount *uint256.Int) (*service.Result, error)
	Unstake(caller types.Address, amount *uint256.Int) (*service.Result, error)
}

// OpRequest is the body of POST /ops/{operation}. Amount accepts '_' separators.
type OpRequest struct {
	Caller string `json:"caller"`
	To     string `json:"to,omitempty"`
	Amount string `json:"amount,omitempty"`
	Paused bool   `json:"paused,omitempty"`
}

// ApplyOp validates req and runs operation op against w.
// Input problems are reported as ErrInvalidRequest and return no Result.
func ApplyOp(w LedgerWriter, op string, req OpRequest) (*service.Result, error) {
	if req.Caller == "" {
		return nil, fmt.Errorf("%w: caller is required", ErrInvalidRequest)
	}
	caller := types.Address(req.Caller)

	if op == service.OpSetPaused {
		return w.SetPaused(caller, req.Paused)
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse amount string: %v", ErrInvalidRequest, err)
	}

	switch op {
	case service.OpMint, service.OpTransfer:
		if req.To == "" {
			return nil, fmt.Errorf("%w: recipient is required for %s", ErrInvalidRequest, op)
		}
		if op == service.OpMint {
			return w.Mint(caller, types.Address(req.To), amount)
		}
		return w.Transfer(caller, types.Address(req.To), amount)
	case service.OpBurn:
		return w.Burn(caller, amount)
	case service.OpStake:
		return w.Stake(caller, amount)
	case service.OpUnstake:
		return w.Unstake(caller, amount)
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, op)
	}
}

// OpsServer accepts ledger mutations from loopback clients only, so the
// serving process stays the single writer of its store.
type OpsServer struct {
	writer     LedgerWriter
	router     *mux.Router
	ListenAddr string
	server     *http.Server
}

func NewOpsServer(writer LedgerWriter, listenAddr string) *OpsServer {
	s := &OpsServer{
		writer:     writer,
		router:     mux.NewRouter(),
		ListenAddr: listenAddr,
	}
	s.router.Use(loopbackOnly)
	s.router.HandleFunc("/ops/{operation}", s.postOp).Methods(http.MethodPost)
	s.server = &http.Server{
		Addr:              listenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// GetRouter returns the configured router
func (s *OpsServer) GetRouter() *mux.Router {
	return s.router
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *OpsServer) ListenAndServe() error {
	logx.Info("API", "Operations listen on "+s.ListenAddr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *OpsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *OpsServer) postOp(w http.ResponseWriter, r *http.Request) {
	op := mux.Vars(r)["operation"]

	var req OpRequest
	if err := jsonx.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := ApplyOp(s.writer, op, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		if _, ok := lerrors.CodeOf(err); ok {
			writeJSON(w, http.StatusUnprocessableEntity, res)
			return
		}
		logx.Error("API", fmt.Sprintf("op=%s failed: %v", op, err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func loopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		ip := net.ParseIP(host)
		if err != nil || ip == nil || !ip.IsLoopback() {
			logx.Warn("API", "Rejected operation request from "+r.RemoteAddr)
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "operations are accepted from loopback clients only"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
