package observability

const (
	MUsecaseRequests         MetricKey = "usecase_requests_total"
	MUsecaseDuration         MetricKey = "usecase_duration_seconds"
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
	MCheckoutEntries         MetricKey = "checkout_entries_total"
	MEventsHandled           MetricKey = "events_handled_total"
)

// MetricSpec describes how a MetricKey is registered with the metrics backend.
type MetricSpec struct {
	Key     MetricKey
	Help    string
	Labels  []string
	Buckets []float64
}

// Counters lists every counter the application emits.
var Counters = []MetricSpec{
	{Key: MUsecaseRequests, Help: "Total number of use case invocations.", Labels: []string{"use_case", "outcome"}},
	{Key: MHTTPRequests, Help: "Total number of HTTP requests.", Labels: []string{"method", "route", "status"}},
	{Key: MExternalRequests, Help: "Calls to external peers such as the event publisher.", Labels: []string{"peer", "endpoint", "outcome"}},
	{Key: MCheckoutEntries, Help: "Cart entries processed by checkout, by result.", Labels: []string{"result"}},
	{Key: MEventsHandled, Help: "Domain events consumed by workers.", Labels: []string{"event", "outcome"}},
}

// Histograms lists every histogram the application emits. Nil buckets mean prometheus defaults.
var Histograms = []MetricSpec{
	{Key: MUsecaseDuration, Help: "Duration of use case execution in seconds.", Labels: []string{"use_case"}},
	{Key: MHTTPRequestDuration, Help: "Duration of HTTP requests in seconds.", Labels: []string{"method", "route", "status"}},
	{Key: MExternalRequestDuration, Help: "Duration of external calls in seconds.", Labels: []string{"peer", "endpoint"}},
}
