package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHttpStatusRecorder_CapturesCode(t *testing.T) {
	rec := &HttpStatusRecorder{ResponseWriter: httptest.NewRecorder(), Status: http.StatusOK}
	rec.WriteHeader(http.StatusTeapot)
	if rec.Status != http.StatusTeapot {
		t.Errorf("Status = %d", rec.Status)
	}
}

func TestCountAskOutcome(t *testing.T) {
	before := testutil.ToFloat64(askOutcomes.WithLabelValues("cached"))
	CountAskOutcome("cached")
	if got := testutil.ToFloat64(askOutcomes.WithLabelValues("cached")); got != before+1 {
		t.Errorf("cached outcomes = %v, want %v", got, before+1)
	}
}
