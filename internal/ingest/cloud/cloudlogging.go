package cloud

// CloudLoggingAdapter wraps a Google Cloud Logging fetch function as a
// lazy ingest.Adapter. The fetch function typically closes over an
// Entries.List call with the resource/log-name filter already bound
// and its own page-token cursor.
type CloudLoggingAdapter struct {
	*pagingAdapter
}

// NewCloudLoggingAdapter builds a Cloud Logging adapter over fetch.
func NewCloudLoggingAdapter(fetch FetchFunc) *CloudLoggingAdapter {
	return &CloudLoggingAdapter{pagingAdapter: &pagingAdapter{
		providerTag: "cloudlogging",
		fetch:       fetch,
	}}
}
