package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/app"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/x/aswap"
	"github.com/custodia-one/custodia/x/escrow"
	"github.com/custodia-one/custodia/x/transfer"
)

// msgRegistry maps a transition path to a constructor for the concrete
// message type it decodes to.
var msgRegistry = map[string]func() custodia.Msg{
	"escrow/create":          func() custodia.Msg { return &escrow.CreateEscrowMsg{} },
	"escrow/submit_proof":    func() custodia.Msg { return &escrow.SubmitProofMsg{} },
	"escrow/verify_proof":    func() custodia.Msg { return &escrow.VerifyProofMsg{} },
	"escrow/release":         func() custodia.Msg { return &escrow.ReleaseMsg{} },
	"escrow/refund":          func() custodia.Msg { return &escrow.RefundMsg{} },
	"escrow/raise_dispute":   func() custodia.Msg { return &escrow.RaiseDisputeMsg{} },
	"escrow/resolve_dispute": func() custodia.Msg { return &escrow.ResolveDisputeMsg{} },
	"escrow/add_verifier":    func() custodia.Msg { return &escrow.AddVerifierMsg{} },
	"escrow/remove_verifier": func() custodia.Msg { return &escrow.RemoveVerifierMsg{} },

	"aswap/initiate":                   func() custodia.Msg { return &aswap.InitiateSwapMsg{} },
	"aswap/lock":                       func() custodia.Msg { return &aswap.LockSwapMsg{} },
	"aswap/complete":                   func() custodia.Msg { return &aswap.CompleteSwapMsg{} },
	"aswap/submit_oracle_verification": func() custodia.Msg { return &aswap.SubmitOracleVerificationMsg{} },
	"aswap/refund":                     func() custodia.Msg { return &aswap.RefundSwapMsg{} },
	"aswap/cancel":                     func() custodia.Msg { return &aswap.CancelSwapMsg{} },
	"aswap/update_configuration":       func() custodia.Msg { return &aswap.UpdateConfigurationMsg{} },

	"transfer/send_direct":          func() custodia.Msg { return &transfer.SendDirectMsg{} },
	"transfer/shield_deposit":       func() custodia.Msg { return &transfer.ShieldDepositMsg{} },
	"transfer/shield_transfer":      func() custodia.Msg { return &transfer.ShieldTransferMsg{} },
	"transfer/shield_withdraw":      func() custodia.Msg { return &transfer.ShieldWithdrawMsg{} },
	"transfer/update_configuration": func() custodia.Msg { return &transfer.UpdateConfigurationMsg{} },
}

// txEnvelope is the wire format accepted by POST /api/v1/tx. Caller identity
// and attached value come from the trusted gateway, not from signatures.
type txEnvelope struct {
	Caller        custodia.Address `json:"caller"`
	AttachedValue uint64           `json:"attached_value"`
	Path          string           `json:"path"`
	Body          json.RawMessage  `json:"body"`
}

type txResponse struct {
	Log     string        `json:"log"`
	Data    string        `json:"data,omitempty"`
	Payouts []payoutEntry `json:"payouts,omitempty"`
}

type payoutEntry struct {
	Recipient custodia.Address `json:"recipient"`
	Amount    uint64           `json:"amount"`
	Origin    string           `json:"origin"`
}

// Server exposes the custody application over HTTP.
type Server struct {
	app     *app.CustodyApp
	db      custodia.ReadOnlyKVStore
	account custodia.Address
	logger  *zap.Logger
	router  *mux.Router
}

func NewServer(a *app.CustodyApp, db custodia.ReadOnlyKVStore, account custodia.Address, logger *zap.Logger) *Server {
	s := &Server{
		app:     a,
		db:      db,
		account: account,
		logger:  logger,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/tx", s.handleTx).Methods(http.MethodPost)

	// Routes with literal segments go first so they are never shadowed by
	// the single-id variants.
	api.HandleFunc("/escrows/depositor/{account}", s.handleEscrowsByDepositor).Methods(http.MethodGet)
	api.HandleFunc("/escrows/beneficiary/{account}", s.handleEscrowsByBeneficiary).Methods(http.MethodGet)
	api.HandleFunc("/escrows/{id}", s.handleEscrow).Methods(http.MethodGet)
	api.HandleFunc("/proofs/{chain}/{tx}", s.handleProofVerified).Methods(http.MethodGet)

	api.HandleFunc("/swaps/initiator/{account}", s.handleSwapsByInitiator).Methods(http.MethodGet)
	api.HandleFunc("/swaps/participant/{account}", s.handleSwapsByParticipant).Methods(http.MethodGet)
	api.HandleFunc("/swaps/{id}/oracle", s.handleOracleVerification).Methods(http.MethodGet)
	api.HandleFunc("/swaps/{id}", s.handleSwap).Methods(http.MethodGet)

	api.HandleFunc("/transfers/account/{account}", s.handleTransfersByAccount).Methods(http.MethodGet)
	api.HandleFunc("/transfers/{id}", s.handleTransfer).Methods(http.MethodGet)
	api.HandleFunc("/notes/{id}", s.handleNote).Methods(http.MethodGet)
	api.HandleFunc("/nullifiers/{nullifier}", s.handleNullifier).Methods(http.MethodGet)
	api.HandleFunc("/commitments/{commitment}", s.handleCommitment).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTx(w http.ResponseWriter, r *http.Request) {
	var env txEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrInput, "malformed envelope"))
		return
	}
	newMsg, ok := msgRegistry[env.Path]
	if !ok {
		s.writeError(w, errors.Wrapf(errors.ErrNotFound, "no transition %q", env.Path))
		return
	}
	msg := newMsg()
	if len(env.Body) > 0 {
		if err := json.Unmarshal(env.Body, msg); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrInput, "malformed message body"))
			return
		}
	}

	ctx := r.Context()
	ctx = custodia.WithBlockTime(ctx, time.Now().UTC())
	ctx = custodia.WithCaller(ctx, env.Caller)
	ctx = custodia.WithAttachedValue(ctx, env.AttachedValue)
	ctx = custodia.WithContractAccount(ctx, s.account)

	res, payouts, err := s.app.DeliverTx(ctx, msg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := txResponse{Log: res.Log, Data: string(res.Data)}
	for _, p := range payouts {
		resp.Payouts = append(resp.Payouts, payoutEntry{
			Recipient: p.Recipient,
			Amount:    p.Amount,
			Origin:    p.Origin,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEscrow(w http.ResponseWriter, r *http.Request) {
	esc, err := escrow.GetEscrow(s.db, mux.Vars(r)["id"])
	s.respond(w, esc, err)
}

func (s *Server) handleEscrowsByDepositor(w http.ResponseWriter, r *http.Request) {
	ids, err := escrow.EscrowsByDepositor(s.db, custodia.Address(mux.Vars(r)["account"]))
	s.respond(w, ids, err)
}

func (s *Server) handleEscrowsByBeneficiary(w http.ResponseWriter, r *http.Request) {
	ids, err := escrow.EscrowsByBeneficiary(s.db, custodia.Address(mux.Vars(r)["account"]))
	s.respond(w, ids, err)
}

func (s *Server) handleProofVerified(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	verified, err := escrow.IsProofVerified(s.db, vars["chain"], vars["tx"])
	s.respond(w, map[string]bool{"verified": verified}, err)
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	swap, err := aswap.GetSwap(s.db, mux.Vars(r)["id"])
	s.respond(w, swap, err)
}

func (s *Server) handleOracleVerification(w http.ResponseWriter, r *http.Request) {
	v, err := aswap.OracleVerification(s.db, mux.Vars(r)["id"])
	s.respond(w, v, err)
}

func (s *Server) handleSwapsByInitiator(w http.ResponseWriter, r *http.Request) {
	ids, err := aswap.SwapsByInitiator(s.db, custodia.Address(mux.Vars(r)["account"]))
	s.respond(w, ids, err)
}

func (s *Server) handleSwapsByParticipant(w http.ResponseWriter, r *http.Request) {
	ids, err := aswap.SwapsByParticipant(s.db, custodia.Address(mux.Vars(r)["account"]))
	s.respond(w, ids, err)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	t, err := transfer.GetTransfer(s.db, mux.Vars(r)["id"])
	s.respond(w, t, err)
}

func (s *Server) handleTransfersByAccount(w http.ResponseWriter, r *http.Request) {
	ids, err := transfer.TransfersByAccount(s.db, custodia.Address(mux.Vars(r)["account"]))
	s.respond(w, ids, err)
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	n, err := transfer.GetNote(s.db, mux.Vars(r)["id"])
	s.respond(w, n, err)
}

func (s *Server) handleNullifier(w http.ResponseWriter, r *http.Request) {
	used, err := transfer.IsNullifierUsed(s.db, mux.Vars(r)["nullifier"])
	s.respond(w, map[string]bool{"used": used}, err)
}

func (s *Server) handleCommitment(w http.ResponseWriter, r *http.Request) {
	id, err := transfer.TransferByRecipientCommitment(s.db, mux.Vars(r)["commitment"])
	s.respond(w, map[string]string{"transfer_id": id}, err)
}

func (s *Server) respond(w http.ResponseWriter, payload interface{}, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), map[string]interface{}{
		"error": err.Error(),
		"code":  errors.Code(err),
	})
}

// httpStatus maps a root error to the closest HTTP status code.
func httpStatus(err error) int {
	switch errors.Code(err) {
	case errors.ErrNotFound.Code():
		return http.StatusNotFound
	case errors.ErrUnauthorized.Code():
		return http.StatusForbidden
	case errors.ErrDuplicate.Code(), errors.ErrState.Code(), errors.ErrImmutable.Code(), errors.ErrExpired.Code():
		return http.StatusConflict
	case errors.ErrDatabase.Code(), errors.ErrPanic.Code():
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("http handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
