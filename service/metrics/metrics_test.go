package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHelpers(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRPCCall("getLatestBlockhash", "success", "devnet", 0.12)
	m.RecordRPCCall("getLatestBlockhash", "success", "devnet", 0.08)
	m.RecordRPCCall("sendTransaction", "error", "devnet", 0.3)
	m.RecordTransactionSubmitted("prog", "confirmed")
	m.RecordConfirmation("confirmed", 1.5)
	m.RecordConfirmationPoll("confirmed")
	m.RecordConfirmationPoll("confirmed")
	m.RecordNATSPublish("pings.prog", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.solanaRPCCallsTotal.WithLabelValues("getLatestBlockhash", "success", "devnet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.solanaRPCCallsTotal.WithLabelValues("sendTransaction", "error", "devnet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactionsSubmittedTotal.WithLabelValues("prog", "confirmed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.confirmationPollsTotal.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.natsMessagesPublished.WithLabelValues("pings.prog", "success")))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	assert.Panics(t, func() {
		NewMetrics(reg)
	})
}

func TestPush(t *testing.T) {
	t.Run("pushes gathered metrics under the job path", func(t *testing.T) {
		var gotPath, gotBody string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)
		m.RecordTransactionSubmitted("prog", "confirmed")

		err := Push(context.Background(), server.URL, reg, map[string]string{"cluster": "devnet"})
		require.NoError(t, err)

		assert.Equal(t, "/metrics/job/solping/cluster/devnet", gotPath)
		assert.NotEmpty(t, gotBody)
	})

	t.Run("gateway error is returned", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		reg := prometheus.NewRegistry()
		NewMetrics(reg).RecordTransactionSubmitted("prog", "confirmed")

		err := Push(context.Background(), server.URL, reg, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to push metrics")
	})
}
