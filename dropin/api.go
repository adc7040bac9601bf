package dropin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alovak/dropin-bridge/dropin/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// API is the HTTP surface of the bridge. The request endpoint long-polls
// the settlement; the result endpoint is the out-of-band channel the
// external flow posts its completion into.
type API struct {
	correlator *Correlator
	journal    *Repository
}

func NewAPI(correlator *Correlator, journal *Repository) *API {
	return &API{
		correlator: correlator,
		journal:    journal,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/dropin", func(r chi.Router) {
		r.Post("/requests", a.startRequest)
		r.Post("/requests/{requestID}/result", a.postResult)
		r.Route("/settlements", func(r chi.Router) {
			r.Get("/", a.listSettlements)
			r.Get("/{requestID}", a.getSettlement)
		})
	})
}

func (a *API) startRequest(w http.ResponseWriter, r *http.Request) {
	opts := models.RequestOptions{}
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	select {
	case s := <-a.correlator.Start(r.Context(), opts):
		if s.Err != nil {
			writeSettlementError(w, s.Err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(s.Payment)
	case <-r.Context().Done():
		// The caller walked away; the flow keeps running and the journal
		// keeps the eventual settlement.
		http.Error(w, "request abandoned", http.StatusRequestTimeout)
	}
}

func (a *API) postResult(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	outcome := models.FlowOutcome{}
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Stale or mismatched results are dropped, not errors: the poster is
	// an external flow that may redeliver.
	if a.correlator.HandleFlowResult(r.Context(), requestID, outcome) {
		w.WriteHeader(http.StatusAccepted)
	} else {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *API) listSettlements(w http.ResponseWriter, r *http.Request) {
	records, err := a.journal.ListSettlements(r.Context(), 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(records)
}

func (a *API) getSettlement(w http.ResponseWriter, r *http.Request) {
	record, err := a.journal.GetSettlement(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(record)
}

// writeSettlementError renders the {code, message} failure payload with an
// HTTP status derived from the taxonomy code.
func writeSettlementError(w http.ResponseWriter, err error) {
	derr := &Error{}
	if !errors.As(err, &derr) {
		derr = &Error{Code: "InternalError", Message: err.Error()}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForCode(derr.Code))
	json.NewEncoder(w).Encode(derr)
}

func statusForCode(code string) int {
	switch code {
	case CodeMissingCredential, CodeMissingThreeDSecureConfig,
		CodeAddressConstructionFailed, CodeThreeDSecureRequestFailed:
		return http.StatusBadRequest
	case CodeNoHostSurface:
		return http.StatusServiceUnavailable
	case CodeRequestAlreadyInFlight, CodeRequestSuperseded, CodeUserCancellation:
		return http.StatusConflict
	case CodeAwaitTimeout:
		return http.StatusGatewayTimeout
	default:
		// Liability rejections, resolution failures and the flow's own
		// pass-through errors all happened downstream of us.
		return http.StatusBadGateway
	}
}
