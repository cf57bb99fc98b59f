package http

import (
	"context"
	"net/http"

	"bikepulse/internal/report"
)

func withChartSpec(r *http.Request, spec report.ChartSpec) context.Context {
	return context.WithValue(r.Context(), chartSpecKey{}, spec)
}

func chartSpecFrom(r *http.Request) report.ChartSpec {
	spec, _ := r.Context().Value(chartSpecKey{}).(report.ChartSpec)
	return spec
}
