package cloud

// CloudWatchAdapter wraps an AWS CloudWatch Logs fetch function as a
// lazy ingest.Adapter. The fetch function typically closes over a
// FilterLogEvents call with the log group/stream already bound and
// its own NextToken cursor.
type CloudWatchAdapter struct {
	*pagingAdapter
}

// NewCloudWatchAdapter builds a CloudWatch adapter over fetch.
func NewCloudWatchAdapter(fetch FetchFunc) *CloudWatchAdapter {
	return &CloudWatchAdapter{pagingAdapter: &pagingAdapter{
		providerTag: "cloudwatch",
		fetch:       fetch,
	}}
}
