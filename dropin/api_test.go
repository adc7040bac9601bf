package dropin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alovak/dropin-bridge/dropin"
	"github.com/alovak/dropin-bridge/dropin/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestServer wires a correlator whose launcher posts the given outcome
// back through the HTTP result endpoint after a short delay, the same way
// the real external flow reports back.
func newTestServer(t *testing.T, outcome models.FlowOutcome) (*httptest.Server, *dropin.Repository) {
	t.Helper()

	logger := testLogger()
	journal := dropin.NewRepository()
	router := chi.NewRouter()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	launcher := dropin.FlowLauncherFunc(func(ctx context.Context, surface dropin.HostSurface, requestID uuid.UUID, params *models.LaunchParameters) error {
		go func() {
			time.Sleep(20 * time.Millisecond)
			body, _ := json.Marshal(outcome)
			resp, err := http.Post(server.URL+"/dropin/requests/"+requestID.String()+"/result", "application/json", bytes.NewReader(body))
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	})

	surface := &capableSurface{plainSurface{"test"}, "session-1"}
	correlator := dropin.NewCorrelator(logger, nil, dropin.NewBuilder(logger), launcher,
		staticCollector("device-blob", nil), func() dropin.HostSurface { return surface }, journal)

	api := dropin.NewAPI(correlator, journal)
	api.AppendRoutes(router)

	return server, journal
}

func startRequestBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(validOptions())
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestAPI_StartRequestSettlesOverHTTP(t *testing.T) {
	server, journal := newTestServer(t, approvedOutcome())

	resp, err := http.Post(server.URL+"/dropin/requests", "application/json", startRequestBody(t))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	payment := models.ResolvedPayment{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payment))
	require.Equal(t, "nonce-abc", payment.Token)
	require.Equal(t, "Visa", payment.Type)
	require.Equal(t, "device-blob", payment.DeviceFingerprint)

	records, err := journal.ListSettlements(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Empty(t, records[0].Code)
}

func TestAPI_ValidationFailurePayload(t *testing.T) {
	server, _ := newTestServer(t, approvedOutcome())

	opts := validOptions()
	opts.ThreeDSecure = nil
	body, _ := json.Marshal(opts)

	resp, err := http.Post(server.URL+"/dropin/requests", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	payload := struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, dropin.CodeMissingThreeDSecureConfig, payload.Code)
	require.NotEmpty(t, payload.Message)
}

func TestAPI_CancellationPayload(t *testing.T) {
	server, _ := newTestServer(t, models.FlowOutcome{Status: models.FlowCancelled})

	resp, err := http.Post(server.URL+"/dropin/requests", "application/json", startRequestBody(t))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusConflict, resp.StatusCode)

	payload := struct {
		Code string `json:"code"`
	}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, dropin.CodeUserCancellation, payload.Code)
}

func TestAPI_StaleResultIsDropped(t *testing.T) {
	server, _ := newTestServer(t, approvedOutcome())

	body, _ := json.Marshal(approvedOutcome())
	resp, err := http.Post(server.URL+"/dropin/requests/"+uuid.New().String()+"/result", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_MalformedResultID(t *testing.T) {
	server, _ := newTestServer(t, approvedOutcome())

	resp, err := http.Post(server.URL+"/dropin/requests/not-a-uuid/result", "application/json", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_SettlementLookup(t *testing.T) {
	server, journal := newTestServer(t, approvedOutcome())

	resp, err := http.Post(server.URL+"/dropin/requests", "application/json", startRequestBody(t))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	records, err := journal.ListSettlements(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	resp, err = http.Get(server.URL + "/dropin/settlements/" + records[0].RequestID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rec := dropin.SettlementRecord{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	require.Equal(t, records[0].RequestID, rec.RequestID)
	require.Equal(t, "Visa", rec.TokenType)

	resp, err = http.Get(server.URL + "/dropin/settlements/" + uuid.New().String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
