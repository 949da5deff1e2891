package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, dataset string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "dataset" && l.GetValue() == dataset {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestCollector_CountsPerDataset(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRead("local")
	c.RecordRead("local")
	c.RecordRead("clients")
	c.RecordWrite("local")

	require.Equal(t, 2.0, counterValue(t, reg, "cognimock_store_reads_total", "local"))
	require.Equal(t, 1.0, counterValue(t, reg, "cognimock_store_reads_total", "clients"))
	require.Equal(t, 1.0, counterValue(t, reg, "cognimock_store_writes_total", "local"))
}

func TestHandler_ServesScrape(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordWrite("local")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "cognimock_store_writes_total")
}
