// Package server exposes a book as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Handler serves the book operations.
type Handler struct {
	book *pocket.Book
	log  logrus.FieldLogger
}

func NewHandler(book *pocket.Book, log logrus.FieldLogger) *Handler {
	return &Handler{book: book, log: log}
}

// Router returns the routes of the API.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	r.HandleFunc("/transactions", h.AddTransaction).Methods("POST")
	r.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")
	r.HandleFunc("/summary", h.Summary).Methods("GET")

	r.HandleFunc("/notes", h.ListNotes).Methods("GET")
	r.HandleFunc("/notes", h.AddNote).Methods("POST")
	r.HandleFunc("/notes/{id}", h.UpdateNote).Methods("PUT")
	r.HandleFunc("/notes/{id}", h.DeleteNote).Methods("DELETE")

	r.HandleFunc("/portfolio", h.ListPortfolio).Methods("GET")
	r.HandleFunc("/portfolio", h.AddPortfolioTx).Methods("POST")
	r.HandleFunc("/portfolio/{id}", h.DeletePortfolioTx).Methods("DELETE")
	r.HandleFunc("/positions", h.Positions).Methods("GET")

	r.HandleFunc("/loans", h.ListLoans).Methods("GET")
	r.HandleFunc("/loans", h.AddLoan).Methods("POST")
	r.HandleFunc("/loans/{id}", h.GetLoan).Methods("GET")
	r.HandleFunc("/loans/{id}", h.DeleteLoan).Methods("DELETE")
	r.HandleFunc("/loans/{id}/payments", h.AddPayment).Methods("POST")
	r.HandleFunc("/payments/{id}", h.DeletePayment).Methods("DELETE")

	r.HandleFunc("/snapshots", h.Snapshots).Methods("GET")
	r.HandleFunc("/analytics", h.Analytics).Methods("GET")

	r.HandleFunc("/export", h.Export).Methods("GET")
	r.HandleFunc("/import", h.Import).Methods("POST")
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("request served")
	})
}

// sendJSON writes v as the JSON body of the response.
func (h *Handler) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("cannot write response")
	}
}

// sendJSONError writes err as a JSON error body, with the status of its kind.
func (h *Handler) sendJSONError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pocket.ErrMonthClosed):
		status = http.StatusConflict
	case errors.Is(err, pocket.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pocket.ErrInvalid):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	} else {
		h.log.WithError(err).WithField("status", status).Warn("request rejected")
	}
	h.sendJSON(w, status, map[string]string{"error": err.Error()})
}

// decode reads the JSON body of r into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("cannot parse request body: %w: %w", pocket.ErrInvalid, err)
	}
	return nil
}

func pathID(r *http.Request) pocket.ID { return pocket.ID(mux.Vars(r)["id"]) }

// month reads the month query parameter, the current month by default.
func (h *Handler) month(r *http.Request) (date.Month, error) {
	v := r.URL.Query().Get("month")
	if v == "" {
		return date.MonthOf(h.book.Today()), nil
	}
	m, err := date.ParseMonth(v)
	if err != nil {
		return date.Month{}, fmt.Errorf("%w: %w", pocket.ErrInvalid, err)
	}
	return m, nil
}

// Transactions

// ListTransactions lists the transactions of the month query parameter, or
// between the from and to dates. Without parameter it lists them all.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var rg date.Range
	q := r.URL.Query()
	if q.Has("month") {
		m, err := h.month(r)
		if err != nil {
			h.sendJSONError(w, err)
			return
		}
		rg = m.Range()
	}
	for key, d := range map[string]*date.Date{"from": &rg.From, "to": &rg.To} {
		if !q.Has(key) {
			continue
		}
		v, err := date.Parse(q.Get(key))
		if err != nil {
			h.sendJSONError(w, fmt.Errorf("invalid %s date: %w: %w", key, pocket.ErrInvalid, err))
			return
		}
		*d = v
	}
	txs, err := h.book.Transactions(rg)
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	if txs == nil {
		txs = []pocket.Transaction{}
	}
	h.sendJSON(w, http.StatusOK, txs)
}

func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var tx pocket.Transaction
	if err := decode(r, &tx); err != nil {
		h.sendJSONError(w, err)
		return
	}
	tx, err := h.book.AddTransaction(tx)
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, tx)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.book.DeleteTransaction(pathID(r)); err != nil {
		h.sendJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary totals the month query parameter.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	m, err := h.month(r)
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	s, err := h.book.MonthSummary(m)
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, s)
}

// Notes

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.book.Notes()
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	if notes == nil {
		notes = []pocket.Note{}
	}
	h.sendJSON(w, http.StatusOK, notes)
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var n pocket.Note
	if err := decode(r, &n); err != nil {
		h.sendJSONError(w, err)
		return
	}
	n, err := h.book.AddNote(n)
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, n)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var n pocket.Note
	if err := decode(r, &n); err != nil {
		h.sendJSONError(w, err)
		return
	}
	n.ID = pathID(r)
	n, err := h.book.UpdateNote(n)
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, n)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.book.DeleteNote(pathID(r)); err != nil {
		h.sendJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Portfolio

func (h *Handler) ListPortfolio(w http.ResponseWriter, r *http.Request) {
	entries, err := h.book.Portfolio()
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	if entries == nil {
		entries = []pocket.PortfolioTx{}
	}
	h.sendJSON(w, http.StatusOK, entries)
}

func (h *Handler) AddPortfolioTx(w http.ResponseWriter, r *http.Request) {
	var p pocket.PortfolioTx
	if err := decode(r, &p); err != nil {
		h.sendJSONError(w, err)
		return
	}
	p, err := h.book.AddPortfolioTx(p)
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, p)
}

func (h *Handler) DeletePortfolioTx(w http.ResponseWriter, r *http.Request) {
	if err := h.book.DeletePortfolioTx(pathID(r)); err != nil {
		h.sendJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Positions(w http.ResponseWriter, r *http.Request) {
	ps, err := h.book.Positions()
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	if ps == nil {
		ps = []pocket.Position{}
	}
	h.sendJSON(w, http.StatusOK, ps)
}

// Loans

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.book.Loans()
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	if loans == nil {
		loans = []pocket.LoanStatus{}
	}
	h.sendJSON(w, http.StatusOK, loans)
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	s, err := h.book.Loan(pathID(r))
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, s)
}

func (h *Handler) AddLoan(w http.ResponseWriter, r *http.Request) {
	var l pocket.Loan
	if err := decode(r, &l); err != nil {
		h.sendJSONError(w, err)
		return
	}
	l, err := h.book.AddLoan(l)
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, l)
}

func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	if err := h.book.DeleteLoan(pathID(r)); err != nil {
		h.sendJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPayment records a payment of the loan in the path.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var p pocket.LoanPayment
	if err := decode(r, &p); err != nil {
		h.sendJSONError(w, err)
		return
	}
	p.LoanID = pathID(r)
	p, err := h.book.AddPayment(p)
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, p)
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.book.DeletePayment(pathID(r)); err != nil {
		h.sendJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reports

func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	ss, err := h.book.Snapshots()
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	if ss == nil {
		ss = []pocket.MonthlySnapshot{}
	}
	h.sendJSON(w, http.StatusOK, ss)
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.book.Analytics()
	if err != nil {
		h.sendJSONError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, a)
}

// Backup

// Export downloads the backup of the book.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pocket-%s.json", h.book.Today()))
	if err := h.book.Export(w); err != nil {
		// headers are gone, the body is truncated
		h.log.WithError(err).Error("export failed")
	}
}

// Import replaces the book content with the backup in the request body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if err := h.book.Import(r.Body); err != nil {
		h.sendJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
