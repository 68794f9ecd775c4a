package observability

// Metric keys registered by prometrics.Standard. Labels are listed per key;
// keep them low-cardinality (route templates, never raw paths or ids).
const (
	// {use_case, outcome}
	MUsecaseRequests MetricKey = "usecase_requests_total"
	// {use_case}
	MUsecaseDuration MetricKey = "usecase_duration_seconds"

	// {method, route, status}
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"

	// {peer, endpoint, outcome}; duration drops outcome.
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"

	// {operation, outcome}; outcome is applied, rejected or failed.
	MCartMutations MetricKey = "cart_mutations_total"
)
